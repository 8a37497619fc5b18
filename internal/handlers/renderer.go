package handlers

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin/render"
	"github.com/shopspring/decimal"

	"cihazal/internal/models"
)

// TemplateFuncs, sayfa template'lerinde kullanılan yardımcı fonksiyonlar.
var TemplateFuncs = template.FuncMap{
	"money": func(d decimal.Decimal) string {
		return d.StringFixed(2)
	},
	"categoryLabel": func(category string) string {
		if label, ok := models.CategoryLabels[category]; ok {
			return label
		}
		return category
	},
}

// HTMLRenderer, her sayfa için ayrı template setlerini yönetir.
type HTMLRenderer struct {
	Templates map[string]*template.Template
}

// Instance, render işlemini gerçekleştirir.
func (r *HTMLRenderer) Instance(name string, data interface{}) render.Render {
	tmpl, ok := r.Templates[name]
	if !ok {
		panic(fmt.Sprintf("tanımsız template: %s", name))
	}
	return render.HTML{
		Template: tmpl,
		Data:     data,
	}
}

// Render, HTTP yanıtını yazar.
func (r *HTMLRenderer) Render(w http.ResponseWriter, code int, data ...interface{}) error {
	name := data[0].(string)
	templateData := data[1]
	instance := r.Instance(name, templateData)
	return instance.Render(w)
}
