package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/PabloGalante/liora-api/internal/domain"
)

// MockLLM is a deterministic local stand-in for the model.
type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) GenerateReply(_ context.Context, _ string, window []domain.WindowTurn, userText string) (string, error) {
	if len(window) == 0 {
		return fmt.Sprintf("Thank you for sharing that with me. I hear you saying %q 🌿", strings.TrimSpace(userText)), nil
	}
	return fmt.Sprintf("I'm still here with you. You said %q, and that matters.", strings.TrimSpace(userText)), nil
}
