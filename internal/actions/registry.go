package actions

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

var ErrActionNotFound = errors.New("action not found")

type Registry struct {
	actions map[string]Action
}

func NewRegistry(actions ...Action) *Registry {
	indexed := map[string]Action{}
	for _, action := range actions {
		if action == nil {
			continue
		}
		key := normalizeName(action.Name())
		if key == "" {
			continue
		}
		indexed[key] = action
	}
	return &Registry{
		actions: indexed,
	}
}

func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.actions))
	for _, action := range r.actions {
		names = append(names, action.Name())
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Run(ctx context.Context, name string, dispatcher Dispatcher, tracker Tracker, domain Domain) ([]Event, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: no registry configured", ErrActionNotFound)
	}
	key := normalizeName(name)
	if key == "" {
		return nil, fmt.Errorf("%w: empty action name", ErrActionNotFound)
	}
	action, ok := r.actions[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrActionNotFound, key)
	}
	events, err := action.Run(ctx, dispatcher, tracker, domain)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []Event{}
	}
	return events, nil
}
