package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

// responsesCompleter talks to the OpenAI Responses API and supports strict JSON schemas.
type responsesCompleter struct {
	client          *openai.Client
	model           string
	maxOutputTokens int
	serviceTier     string
}

func newResponsesCompleter(cfg Config) *responsesCompleter {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)
	return &responsesCompleter{
		client:          &client,
		model:           cfg.Model,
		maxOutputTokens: cfg.MaxOutputTokens,
		serviceTier:     cfg.ServiceTier,
	}
}

func (c *responsesCompleter) Complete(ctx context.Context, req Request) (string, error) {
	if c.client == nil {
		return "", errors.New("responsesCompleter: client is nil")
	}
	params := responses.ResponseNewParams{
		Model:        c.model,
		Instructions: openai.String(req.System),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(req.User, responses.EasyInputMessageRoleUser),
			},
		},
	}
	if c.maxOutputTokens > 0 {
		params.MaxOutputTokens = openai.Int(int64(c.maxOutputTokens))
	}
	if c.serviceTier != "" {
		params.ServiceTier = responses.ResponseNewParamsServiceTier(c.serviceTier)
	}

	if req.Format == FormatJSONObject {
		if req.Schema != nil {
			name := req.SchemaName
			if name == "" {
				name = "Output"
			}
			params.Text = responses.ResponseTextConfigParam{
				Format: responses.ResponseFormatTextConfigUnionParam{
					OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
						Name:   name,
						Schema: req.Schema,
						Strict: openai.Bool(true),
						Type:   "json_schema",
					},
				},
			}
		} else {
			params.Text = responses.ResponseTextConfigParam{
				Format: responses.ResponseFormatTextConfigUnionParam{
					OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
				},
			}
		}
	}

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai responses: %w", err)
	}
	out := resp.OutputText()
	if strings.TrimSpace(out) == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

// chatCompleter talks to any OpenAI-compatible Chat Completions endpoint (OpenAI, OpenRouter).
// Chat JSON mode is used without a schema, since not every compatible gateway honours one.
type chatCompleter struct {
	client          *openai.Client
	model           string
	maxOutputTokens int
}

func newChatCompleter(cfg Config) *chatCompleter {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)
	return &chatCompleter{
		client:          &client,
		model:           cfg.Model,
		maxOutputTokens: cfg.MaxOutputTokens,
	}
}

func (c *chatCompleter) Complete(ctx context.Context, req Request) (string, error) {
	if c.client == nil {
		return "", errors.New("chatCompleter: client is nil")
	}
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		},
	}
	if c.maxOutputTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(c.maxOutputTokens))
	}
	if req.Format == FormatJSONObject {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateSchema reflects T into the schema sent with FormatJSONObject requests. The
// Responses backend passes it as a strict json_schema format, so every property the result
// type declares is one the model must fill; Chat Completions and the other backends only
// receive the shape through the prompt. References are inlined and extra properties are
// rejected, which strict mode requires.
func GenerateSchema[T any]() map[string]any {
	r := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	b, err := json.Marshal(r.Reflect(v))
	if err != nil {
		panic(fmt.Sprintf("GenerateSchema: marshal: %v", err))
	}
	var schema map[string]any
	if err := json.Unmarshal(b, &schema); err != nil {
		panic(fmt.Sprintf("GenerateSchema: decode: %v", err))
	}
	delete(schema, "$schema")
	delete(schema, "$id")
	strictify(schema)
	return schema
}

// strictify marks every object node closed with all of its properties required. The
// required list is sorted so repeated runs send an identical schema.
func strictify(node map[string]any) {
	props, _ := node["properties"].(map[string]any)
	if t, _ := node["type"].(string); t == "object" {
		node["additionalProperties"] = false
		if len(props) > 0 {
			required := make([]string, 0, len(props))
			for name := range props {
				required = append(required, name)
			}
			sort.Strings(required)
			node["required"] = required
		}
	}
	for _, p := range props {
		if child, ok := p.(map[string]any); ok {
			strictify(child)
		}
	}
	if items, ok := node["items"].(map[string]any); ok {
		strictify(items)
	}
}
