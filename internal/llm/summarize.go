package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/HendryAvila/prothought/internal/journal"
)

// ErrNothingToSummarize is returned when there are no thoughts to send to
// the model. It is a normal outcome, not a SummarizationError: the endpoint
// is never contacted for an empty period.
var ErrNothingToSummarize = errors.New("nothing to summarize")

// SystemPrompt frames the digest request sent alongside the thoughts.
const SystemPrompt = "You are a helpful assistant that summarizes short personal journal entries. " +
	"Produce a concise digest of the main themes and activities. " +
	"Entries wrapped in ~~ were retracted by the author and should be mentioned only as retracted."

// BuildPrompt renders thoughts as "[timestamp] text" lines in the order
// given, which is the ascending-timestamp order the query produces.
func BuildPrompt(thoughts []journal.Thought) string {
	var b strings.Builder
	for i, t := range thoughts {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%s] %s", t.Timestamp, t.Text)
	}
	return b.String()
}

// Summarize forwards the thoughts to the chat completion endpoint and
// returns the model's digest. An empty thought list short-circuits with
// ErrNothingToSummarize before any network traffic.
func Summarize(ctx context.Context, client *Client, thoughts []journal.Thought) (string, error) {
	if len(thoughts) == 0 {
		return "", ErrNothingToSummarize
	}
	return client.Complete(ctx, BuildPrompt(thoughts), SystemPrompt)
}
