package builtin

import "github.com/petal-labs/anther/tool"

const dataAnalysisTemplate = `You are a data analysis expert. Please help analyze {{.data_type}} data with the following objective: {{.objective}}

Please provide:
1. Initial data exploration steps
2. Relevant statistical measures or metrics
3. Visualization recommendations
4. Key insights to look for
5. Potential pitfalls or limitations to consider

Make your analysis thorough but accessible to non-experts.
`

const apiIntegrationTemplate = `You are an API integration specialist. Please provide guidance for integrating {{.api_name}} API for the following use case: {{.use_case}}

Please include:
1. Authentication requirements
2. Rate limiting considerations
3. Error handling strategies
4. Data transformation needs
5. Testing approaches
6. Security best practices

Provide practical, production-ready advice.
`

// Prompts returns the built-in prompt templates.
func Prompts() []tool.Prompt {
	return []tool.Prompt{
		{
			Name:        "data_analysis",
			Description: "Generate a data analysis prompt.",
			Params: []tool.Param{
				{Name: "data_type", Type: tool.TypeString, Required: true, Description: "Type of data to analyze (csv, json, text, ...)"},
				{Name: "objective", Type: tool.TypeString, Required: true, Description: "What the analysis should achieve"},
			},
			Template: dataAnalysisTemplate,
		},
		{
			Name:        "api_integration",
			Description: "Generate an API integration prompt.",
			Params: []tool.Param{
				{Name: "api_name", Type: tool.TypeString, Required: true, Description: "Name of the API to integrate"},
				{Name: "use_case", Type: tool.TypeString, Required: true, Description: "Specific use case or goal"},
			},
			Template: apiIntegrationTemplate,
		},
	}
}
