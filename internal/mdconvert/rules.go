package mdconvert

import (
	"bytes"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/rohmanhakim/store-insights/internal/metadata"
	"github.com/rohmanhakim/store-insights/internal/sanitizer"
	"github.com/rohmanhakim/store-insights/pkg/failure"
	"golang.org/x/net/html"
)

/*
Design Principles
- Semantic fidelity over visual fidelity
- No inferred structure
- GitHub-Flavored Markdown compatibility

Conversion Rules
- Headings map directly (h1-h6 to # - ######)
- Lists and tables converted structurally
- Relative links and images resolved against the storefront root
- DOM order preserved

Inline styles and raw HTML are avoided.
*/

// ConvertRule converts a sanitized policy or content region to Markdown.
type ConvertRule interface {
	Convert(sanitizedHTMLDoc sanitizer.SanitizedHTMLDoc, param ConvertParam) (ConversionResult, failure.ClassifiedError)
}

// Compile-time interface check
var _ ConvertRule = (*StrictConversionRule)(nil)

// StrictConversionRule holds one converter; html-to-markdown converters are
// safe for concurrent use once built.
type StrictConversionRule struct {
	metadataSink metadata.MetadataSink
	conv         *converter.Converter
}

func NewRule(metadataSink metadata.MetadataSink) *StrictConversionRule {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	return &StrictConversionRule{
		metadataSink: metadataSink,
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

func (s *StrictConversionRule) Convert(
	sanitizedHTMLDoc sanitizer.SanitizedHTMLDoc,
	param ConvertParam,
) (ConversionResult, failure.ClassifiedError) {
	result, err := s.convert(sanitizedHTMLDoc.GetContentNode(), param)
	if err != nil {
		s.metadataSink.RecordError(
			time.Now(),
			"mdconvert",
			"StrictConversionRule.Convert",
			mapConversionErrorToMetadataCause(err),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, param.BaseURL),
			},
		)
		return ConversionResult{}, err
	}
	return result, nil
}

func (s *StrictConversionRule) convert(htmlDoc *html.Node, param ConvertParam) (ConversionResult, *ConversionError) {
	if htmlDoc == nil {
		return ConversionResult{}, &ConversionError{
			Message:   "cannot convert nil HTML node",
			Retryable: false,
			Cause:     ErrCauseConversionFailure,
		}
	}

	var markdown []byte
	var err error
	if param.BaseURL != "" {
		markdown, err = s.conv.ConvertNode(htmlDoc, converter.WithDomain(param.BaseURL))
	} else {
		markdown, err = s.conv.ConvertNode(htmlDoc)
	}
	if err != nil {
		return ConversionResult{}, &ConversionError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseConversionFailure,
		}
	}

	return NewConversionResult(bytes.TrimSpace(markdown)), nil
}
