package modsbase

import (
	"net/url"
	"strings"

	"modfetch/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// the mirror keys its free download path on the presence of this field.
const freeMethodField = "method_free"

// FormSubmission is the gated download form as it will be posted.
type FormSubmission struct {
	Action string
	Fields map[string]string
}

// ResolveAction makes a form action absolute. protocol-relative actions get
// https, root-relative ones are joined to `origin` and anything else is
// resolved against the page it came from.
func ResolveAction(action, pageUrl, origin string) string {
	action = strings.TrimSpace(action)
	switch {
	case action == "":
		return pageUrl
	case strings.HasPrefix(action, "//"):
		return "https:" + action
	case strings.HasPrefix(action, "/"):
		return strings.TrimSuffix(origin, "/") + action
	}

	ref, err := url.Parse(action)
	if err != nil || ref.IsAbs() {
		return action
	}
	base, err := url.Parse(pageUrl)
	if err != nil {
		return action
	}
	return base.ResolveReference(ref).String()
}

// BuildForm reads the first POST form and every hidden input on a mirror
// page. a page without a POST form posts back to itself.
func BuildForm(doc *goquery.Document, pageUrl, origin string) FormSubmission {
	action, ok := htmlutil.FindPostForm(doc)
	if !ok {
		action = pageUrl
	}

	fields := htmlutil.HiddenInputs(doc)
	if _, ok := fields[freeMethodField]; !ok {
		fields[freeMethodField] = ""
	}

	return FormSubmission{
		Action: ResolveAction(action, pageUrl, origin),
		Fields: fields,
	}
}
