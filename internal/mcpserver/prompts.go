package mcpserver

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"path"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/*.md
var promptFiles embed.FS

// promptArgument is declared in a prompt's frontmatter and substituted for
// {{name}} in its body.
type promptArgument struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Required    bool   `yaml:"required"`
	Default     string `yaml:"default"`
}

type promptFile struct {
	Description string           `yaml:"description"`
	Arguments   []promptArgument `yaml:"arguments"`
	body        string
}

// registerPrompts registers every embedded markdown prompt under its file name.
func (s *Server) registerPrompts() {
	entries, err := promptFiles.ReadDir("prompts")
	if err != nil {
		s.logger.Warn("no prompts embedded", "error", err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".md")

		content, err := promptFiles.ReadFile(path.Join("prompts", entry.Name()))
		if err != nil {
			s.logger.Warn("skipping prompt", "prompt", name, "error", err)
			continue
		}
		pf, err := parsePrompt(content)
		if err != nil {
			s.logger.Warn("skipping prompt", "prompt", name, "error", err)
			continue
		}

		prompt := &mcp.Prompt{Name: name, Description: pf.Description}
		for _, arg := range pf.Arguments {
			prompt.Arguments = append(prompt.Arguments, &mcp.PromptArgument{
				Name:        arg.Name,
				Description: arg.Description,
				Required:    arg.Required,
			})
		}
		s.server.AddPrompt(prompt, pf.handler())
	}
}

// parsePrompt splits YAML frontmatter from the body. Content without
// frontmatter is all body.
func parsePrompt(content []byte) (*promptFile, error) {
	if !bytes.HasPrefix(content, []byte("---\n")) {
		return &promptFile{body: string(content)}, nil
	}

	rest := content[4:]
	end := bytes.Index(rest, []byte("\n---\n"))
	if end == -1 {
		return nil, fmt.Errorf("unterminated frontmatter")
	}

	var pf promptFile
	if err := yaml.Unmarshal(rest[:end], &pf); err != nil {
		return nil, fmt.Errorf("invalid frontmatter: %w", err)
	}
	for _, arg := range pf.Arguments {
		if arg.Name == "" {
			return nil, fmt.Errorf("prompt argument without a name")
		}
	}
	pf.body = strings.TrimPrefix(string(rest[end+5:]), "\n")
	return &pf, nil
}

// render substitutes the argument values into the body.
func (pf *promptFile) render(values map[string]string) (string, error) {
	pairs := make([]string, 0, 2*len(pf.Arguments))
	for _, arg := range pf.Arguments {
		v, ok := values[arg.Name]
		if !ok || v == "" {
			if arg.Required {
				return "", fmt.Errorf("missing required argument %q", arg.Name)
			}
			v = arg.Default
		}
		pairs = append(pairs, "{{"+arg.Name+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(pf.body), nil
}

func (pf *promptFile) handler() mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		var args map[string]string
		if req != nil && req.Params != nil {
			args = req.Params.Arguments
		}
		text, err := pf.render(args)
		if err != nil {
			return nil, err
		}
		return &mcp.GetPromptResult{
			Description: pf.Description,
			Messages: []*mcp.PromptMessage{
				{
					Role:    "user",
					Content: &mcp.TextContent{Text: text},
				},
			},
		}, nil
	}
}
