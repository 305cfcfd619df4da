package builtin

import (
	"context"

	"github.com/petal-labs/anther/review"
	"github.com/petal-labs/anther/tool"
)

// CodeReviewDescriptor returns the code_review registration bound to a
// configured checker.
func CodeReviewDescriptor(checker *review.Checker) tool.Descriptor {
	return tool.Descriptor{
		Name:        "code_review",
		Description: "Run the review checklist over source text and report violations.",
		Params: []tool.Param{
			{Name: "source", Type: tool.TypeString, Required: true, Description: "Source text to review"},
			{Name: "filename", Type: tool.TypeString, Description: "Optional filename for the report"},
		},
		Handler: func(_ context.Context, args map[string]any) (map[string]any, error) {
			source := args["source"].(string)

			violations := checker.Check(source)
			result := map[string]any{
				"violations": violations,
				"count":      len(violations),
			}
			if filename, ok := args["filename"].(string); ok && filename != "" {
				result["filename"] = filename
			}
			return result, nil
		},
	}
}
