package clients

import (
	"bytes"
	htmltemplate "html/template"
	"strconv"
	texttemplate "text/template"

	"github.com/shopspring/decimal"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
)

type renderedEmail struct {
	Subject string
	Text    string
	HTML    string
}

type emailLine struct {
	Name      string
	OrderCode string
	Quantity  int
	Price     string
	Cost      string
}

type emailData struct {
	Order *models.Order
	Lines []emailLine
	Total string
}

const orderTextBody = `New order No. {{.Order.ID}}

Customer: {{.Order.FirstName}} {{.Order.LastName}}
Email: {{.Order.Email}}
{{- if .Order.Phone}}
Phone: {{.Order.Phone}}
{{- end}}
{{- if .Order.CompanyName}}
Company: {{.Order.CompanyName}}
{{- end}}
Address: {{.Order.Address}}

{{range .Lines -}}
{{.OrderCode}} {{.Name}} x {{.Quantity}} @ {{.Price}} = {{.Cost}}
{{end}}
Total: {{.Total}}
`

const orderHTMLBody = `<h1>New order No. {{.Order.ID}}</h1>
<p>{{.Order.FirstName}} {{.Order.LastName}}<br>{{.Order.Email}}{{if .Order.Phone}}<br>{{.Order.Phone}}{{end}}{{if .Order.CompanyName}}<br>{{.Order.CompanyName}}{{end}}<br>{{.Order.Address}}</p>
<table>
<tr><th>Code</th><th>Product</th><th>Qty</th><th>Price</th><th>Cost</th></tr>
{{range .Lines}}<tr><td>{{.OrderCode}}</td><td>{{.Name}}</td><td>{{.Quantity}}</td><td>{{.Price}}</td><td>{{.Cost}}</td></tr>
{{end}}</table>
<p><strong>Total: {{.Total}}</strong></p>
`

var (
	orderTextTmpl = texttemplate.Must(texttemplate.New("order_text").Parse(orderTextBody))
	orderHTMLTmpl = htmltemplate.Must(htmltemplate.New("order_html").Parse(orderHTMLBody))
)

func renderOrderConfirmation(order *models.Order) (*renderedEmail, error) {
	data := emailData{Order: order, Total: money(order.TotalCost())}
	for _, item := range order.Items {
		line := emailLine{
			Name:     "product " + strconv.FormatInt(item.ProductID, 10),
			Quantity: item.Quantity,
			Price:    money(item.Price),
			Cost:     money(item.Cost()),
		}
		if item.Product != nil {
			line.Name = item.Product.DisplayName()
			line.OrderCode = item.Product.OrderCode
		}
		data.Lines = append(data.Lines, line)
	}

	var text, html bytes.Buffer
	if err := orderTextTmpl.Execute(&text, data); err != nil {
		return nil, err
	}
	if err := orderHTMLTmpl.Execute(&html, data); err != nil {
		return nil, err
	}

	return &renderedEmail{
		Subject: "New order No. " + strconv.FormatInt(order.ID, 10),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
