package llm

import (
	"context"
	"fmt"
)

// MockClient returns deterministic canned analysis text for local
// development and tests. No network calls.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (c *MockClient) Complete(_ context.Context, prompt, _ string, _ float64, _ int) (string, error) {
	return fmt.Sprintf(`Analysis of the request (%d chars of input).

Key finding: the topic decomposes into three main areas of concern.
Another important finding: available evidence supports an incremental approach.

Recommendations:
- Recommend starting with a narrow pilot before broad rollout
- You should validate assumptions against primary sources
- Consider a quarterly review cadence for the rollout

Methodology: comparative framework analysis was applied.
Method: qualitative synthesis across the cited sources.
`, len(prompt)), nil
}
