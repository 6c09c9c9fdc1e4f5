package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"mjmlc/config"
	"mjmlc/mjml"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context    string
	SourceFile string
	Title      string
	Preview    string
	Lang       string
}

func newValues(doc *mjml.Document, name config.TemplateFieldName, src string) Values {
	v := Values{
		Context:    string(name),
		SourceFile: strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)),
	}
	if head := doc.Head(); head != nil {
		if el := head.Child(mjml.TagTitle); el != nil {
			v.Title = el.Text()
		}
		if el := head.Child(mjml.TagPreview); el != nil {
			v.Preview = el.Text()
		}
	}
	if doc != nil {
		v.Lang, _ = doc.Root.Attr("lang")
	}
	return v
}

func expandTemplate(doc *mjml.Document, name config.TemplateFieldName, field, src string) (string, error) {
	tmpl, err := template.New(string(name)).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, newValues(doc, name, src)); err != nil {
		return "", err
	}
	return buf.String(), nil
}
