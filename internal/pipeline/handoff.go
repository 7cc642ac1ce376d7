package pipeline

import "fmt"

// HandoffPrompt renders the follow-up brief that points an external coding
// agent at the winning idea. The pipeline only writes the text; actually
// invoking an agent is someone else's job.
func HandoffPrompt(artifact string) string {
	return fmt.Sprintf(`You will turn the idea below into a minimal runnable prototype repository.

Requirements:
1) Write a README.md covering the goal of the workflow, its steps, inputs and outputs, and how to run it
2) Provide a smallest runnable demo (for example under scripts/ or src/) that can execute in CI
3) Provide a simple self-check that prints the key result
4) Do not write any secrets or credentials into the repository

The idea, pasted verbatim:
%s
`, artifact)
}
