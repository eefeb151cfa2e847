package registry

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/actormesh/core"
)

// Definition is the declarative, code-free half of an actor spec as parsed
// from YAML. Guards and actions appear only by name; Bind attaches the
// function tables.
//
// Example document:
//
//	actorType: order
//	initial: pending
//	states:
//	  pending:
//	    on:
//	      APPROVE: {target: approved, guard: canApprove, action: recordApproval}
//	      REJECT: rejected
//	  approved: {}
//	  rejected: {}
type Definition struct {
	ActorType string               `yaml:"actorType"`
	Initial   string               `yaml:"initial"`
	States    map[string]stateNode `yaml:"states"`
}

type stateNode struct {
	On map[string]transitionNode `yaml:"on"`
}

// transitionNode accepts either a bare target-state scalar or a mapping with
// target/guard/action keys, normalizing both to the same shape.
type transitionNode struct {
	Target string `yaml:"target"`
	Guard  string `yaml:"guard"`
	Action string `yaml:"action"`
}

func (t *transitionNode) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		t.Target = value.Value
		return nil
	}
	type plain transitionNode
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*t = transitionNode(p)
	return nil
}

// ParseDefinition decodes one YAML spec definition from r.
func ParseDefinition(r io.Reader) (*Definition, error) {
	var def Definition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("parse spec definition: %w", err)
	}
	return &def, nil
}

// Bind attaches guard and action function tables to the definition,
// producing a validated ActorSpec. Every guard/action name referenced by a
// transition must resolve: failing fast here beats a runtime
// GuardNotFoundError on the first live command.
func (d *Definition) Bind(guards map[string]core.Guard, actions map[string]core.Action) (*core.ActorSpec, error) {
	spec := &core.ActorSpec{
		ActorType: d.ActorType,
		Initial:   d.Initial,
		States:    make(map[string]core.StateNode, len(d.States)),
		Guards:    guards,
		Actions:   actions,
	}
	for name, node := range d.States {
		sn := core.StateNode{On: make(map[string]core.Transition, len(node.On))}
		for event, tr := range node.On {
			if tr.Guard != "" {
				if _, ok := guards[tr.Guard]; !ok {
					return nil, fmt.Errorf("bind spec %q: state %q event %q: %w", d.ActorType, name, event, &core.GuardNotFoundError{Guard: tr.Guard})
				}
			}
			if tr.Action != "" {
				if _, ok := actions[tr.Action]; !ok {
					return nil, fmt.Errorf("bind spec %q: state %q event %q: %w", d.ActorType, name, event, &core.ActionNotFoundError{Action: tr.Action})
				}
			}
			sn.On[event] = core.Transition{Target: tr.Target, Guard: tr.Guard, Action: tr.Action}
		}
		spec.States[name] = sn
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

// LoadYAML parses a definition from r, binds the given function tables and
// registers the resulting spec.
func (r *Registry) LoadYAML(src io.Reader, guards map[string]core.Guard, actions map[string]core.Action) (*core.ActorSpec, error) {
	def, err := ParseDefinition(src)
	if err != nil {
		return nil, err
	}
	spec, err := def.Bind(guards, actions)
	if err != nil {
		return nil, err
	}
	if err := r.Register(spec); err != nil {
		return nil, err
	}
	return spec, nil
}
