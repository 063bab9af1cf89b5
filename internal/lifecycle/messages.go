package lifecycle

import (
	"bytes"
	"fmt"
	"html/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/erazemk/lostfound/internal/model"
)

const matchFoundSubject = "🎉 Match Found!"

var matchFoundTemplate = template.Must(template.New("match_found").Parse(`
<h2>🎉 Great News!</h2>

<p>Your {{if .Reported}}reported {{end}}item <b>{{.Item.Name}}</b> has been successfully matched.</p>

<p>For safety and verification, user contact details are not shared directly.</p>

<p>
👉 Please <b>log in to the Lost &amp; Found website</b> and contact the
<b>Lost &amp; Found Admin</b> using the Contact page to {{.Action}} the item.
</p>

<p>The admin will verify the details and arrange a safe, supervised handover.</p>

<p>Regards,<br><b>Lost &amp; Found Team</b></p>
`))

var headsUpTemplate = template.Must(template.New("heads_up").Parse(`
<h2>Match Alert</h2>
<p>Hi {{.Recipient}},</p>
<p>We found a potential match for your {{.Item.Type}} item: <strong>{{.Item.Name}}</strong></p>
<p><strong>Details:</strong></p>
<ul>
    <li>Category: {{.Item.Category}}</li>
    <li>Location: {{.Item.Location}}</li>
    <li>Color: {{.Item.Color}}</li>
    <li>Date: {{.Item.Date.Format "2006-01-02 15:04:05"}}</li>
</ul>
<p>Please log in to the website to view details and contact the person who reported the {{.Item.Type}} item.</p>
<p>Best regards,<br>Lost &amp; Found Team</p>
`))

// matchFoundMessage renders the e-mail sent to the reporter of a newly
// matched item. Owners of lost items collect, finders hand over.
func matchFoundMessage(item *model.Item) (string, string, error) {
	data := struct {
		Item     *model.Item
		Reported bool
		Action   string
	}{Item: item, Action: "collect"}
	if item.Type == model.ItemTypeFound {
		data.Reported = true
		data.Action = "hand over"
	}

	var buf bytes.Buffer
	if err := matchFoundTemplate.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("rendering match message: %w", err)
	}
	return matchFoundSubject, buf.String(), nil
}

// headsUpMessage renders the potential-match alert for an item's reporter.
func headsUpMessage(item *model.Item, recipient string) (string, string, error) {
	subject := fmt.Sprintf("Potential Match Found for Your %s Item!",
		cases.Title(language.English).String(item.Type))

	var buf bytes.Buffer
	err := headsUpTemplate.Execute(&buf, struct {
		Item      *model.Item
		Recipient string
	}{item, recipient})
	if err != nil {
		return "", "", fmt.Errorf("rendering heads-up message: %w", err)
	}
	return subject, buf.String(), nil
}
