package generation

import "context"

const technicalSpecTemplate = `You are a principal software architect writing for the engineers who will build this system.
Using the project context below, write a complete technical specification in Markdown with these sections:
1. Overview
2. Architecture (components and their responsibilities)
3. Data Model
4. API Surface
5. Security Considerations
6. Testing Strategy
7. Open Risks
Use headings, tables and fenced code blocks where they help. Do not invent requirements that contradict the context.

PROJECT CONTEXT:
`

const userGuideTemplate = `You are a senior technical writer producing documentation for non-technical end users.
Using the project context below, write a user guide in Markdown with these sections:
1. Introduction
2. Getting Started
3. Key Features (one subsection per feature, with step-by-step instructions)
4. Troubleshooting
5. FAQ
Write in plain language, second person, and avoid implementation details.

PROJECT CONTEXT:
`

// TechnicalSpecPrompt builds the full prompt for a technical specification.
func TechnicalSpecPrompt(projectContext string) string {
	return technicalSpecTemplate + projectContext
}

// UserGuidePrompt builds the full prompt for a user guide.
func UserGuidePrompt(projectContext string) string {
	return userGuideTemplate + projectContext
}

// GenerateTechnicalSpec returns the model's Markdown technical spec for the given context, unmodified.
func (c *Client) GenerateTechnicalSpec(ctx context.Context, projectContext string) (string, error) {
	return c.generate(ctx, "technical_spec", Request{Prompt: TechnicalSpecPrompt(projectContext)})
}

// GenerateUserGuide returns the model's Markdown user guide for the given context, unmodified.
func (c *Client) GenerateUserGuide(ctx context.Context, projectContext string) (string, error) {
	return c.generate(ctx, "user_guide", Request{Prompt: UserGuidePrompt(projectContext)})
}
