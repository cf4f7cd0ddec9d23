package testutil

import "sync"

// ScriptedPrompter answers confirmations from a fixed script and records
// every question asked. Once the script runs out it declines.
type ScriptedPrompter struct {
	mu      sync.Mutex
	answers []bool
	asked   []string
}

// NewScriptedPrompter creates a prompter that answers in order.
func NewScriptedPrompter(answers ...bool) *ScriptedPrompter {
	return &ScriptedPrompter{answers: answers}
}

// Confirm records prompt and returns the next scripted answer.
func (p *ScriptedPrompter) Confirm(prompt string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.asked = append(p.asked, prompt)
	if len(p.answers) == 0 {
		return false
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a
}

// Asked returns the prompts seen so far.
func (p *ScriptedPrompter) Asked() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.asked...)
}
