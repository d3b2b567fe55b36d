package converters

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/eskil/fileforge/internal/convert"
)

// officeFormats are the document types LibreOffice can render to PDF.
var officeFormats = []convert.Format{"docx", "doc", "odt", "rtf", "txt", "html", "xlsx", "ods", "pptx", "odp"}

// Gotenberg converts office documents to PDF through a Gotenberg sidecar's
// LibreOffice route.
type Gotenberg struct {
	client *resty.Client
	caps   convert.Capabilities
}

// NewGotenberg creates the Gotenberg converter against the given base URL.
func NewGotenberg(baseURL string) *Gotenberg {
	caps := convert.Capabilities{
		Inputs:  officeFormats,
		Outputs: make(map[convert.Format][]convert.Format, len(officeFormats)),
	}
	for _, in := range officeFormats {
		caps.Outputs[in] = []convert.Format{"pdf"}
	}

	// Timeouts come from the dispatcher's per-task context, not the client.
	client := resty.New().SetBaseURL(baseURL)

	return &Gotenberg{client: client, caps: caps}
}

func (g *Gotenberg) Name() string {
	return "gotenberg"
}

func (g *Gotenberg) Capabilities() convert.Capabilities {
	return g.caps
}

func (g *Gotenberg) Convert(ctx context.Context, req convert.Request) error {
	resp, err := g.client.R().
		SetContext(ctx).
		SetFile("files", req.SourcePath).
		SetOutput(req.TargetPath).
		Post("/forms/libreoffice/convert")
	if err != nil {
		return fmt.Errorf("gotenberg request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("gotenberg returned status %d", resp.StatusCode())
	}
	return nil
}
