package greeter

import (
	"context"
	"strings"
)

// Greeter renders greeting templates. Implementations are methods of the
// Greeter bound in the caller's instance context, so a request can swap the
// renderer without touching the registrations.
type Greeter struct {
	// Loud upper-cases every rendered greeting
	Loud bool
}

// Render fills the {name}, {role}, {client} and {super} placeholders of template.
// super is only called when the template asks for it.
func (g *Greeter) Render(ctx context.Context, template string, req Request, super func(context.Context) (string, error)) (string, error) {
	pairs := []string{
		"{name}", req.Name,
		"{role}", req.Role,
		"{client}", req.Client,
	}
	if strings.Contains(template, "{super}") {
		inner, err := super(ctx)
		if err != nil {
			return "", err
		}
		pairs = append(pairs, "{super}", inner)
	}

	out := strings.NewReplacer(pairs...).Replace(template)
	if g.Loud {
		out = strings.ToUpper(out)
	}
	return out, nil
}
