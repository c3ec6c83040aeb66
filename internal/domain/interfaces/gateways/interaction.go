package gateways

// Prompter reads line-based answers from the operator
type Prompter interface {
	Prompt(message string) (string, error)

	// PromptSecret reads a value without echoing it
	PromptSecret(message string) (string, error)
}
