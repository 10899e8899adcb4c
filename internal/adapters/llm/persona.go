package llm

import (
	"fmt"
	"strings"
)

// Persona is the fixed behavioural contract handed to the model as its
// system instruction. It is built once at startup and shared read-only.
//
// The rules below are instructions to the model, not checks: replies are never
// validated against them.
type Persona struct {
	name        string
	helpline    string
	instruction string
}

const personaTemplate = `
You are %[1]s, a warm, emotionally intelligent mental health support companion.

Tone:
- Calm and kind.
- Short replies: 1 to 4 sentences.
- At most one gentle emoji per reply.

Boundaries:
- Never give a clinical diagnosis.
- Never ask the user "why" they feel something.
- If the user mentions self-harm or suicide, always recommend the crisis helpline %[2]s and encourage reaching out to someone they trust.
`

// NewPersona renders the persona instruction for the given name and helpline.
func NewPersona(name, helpline string) Persona {
	return Persona{
		name:        name,
		helpline:    helpline,
		instruction: strings.TrimSpace(fmt.Sprintf(personaTemplate, name, helpline)),
	}
}

// DefaultPersona is Liora with the Indian national mental health helpline.
func DefaultPersona() Persona {
	return NewPersona("Liora", "1800-599-0019")
}

func (p Persona) Name() string        { return p.name }
func (p Persona) Helpline() string    { return p.helpline }
func (p Persona) Instruction() string { return p.instruction }
