package library

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	gderr "github.com/gdasset/gdasset/internal/errors"
)

// The library's JSON API mishandles preview edits, so submissions go through
// the HTML form endpoints instead: fetch the form to obtain the CSRF token,
// then post the payload as form fields with previews re-encoded the way the
// form does it.
//
// Cf. https://github.com/godotengine/godot-asset-library/issues/343

func (c *Client) submitViaForm(ctx context.Context, payload Payload) error {
	target := c.submitURL(payload, true)
	cookies, csrfName, csrfValue, err := c.fetchCSRF(ctx, target)
	if err != nil {
		return err
	}

	form := url.Values{}
	for k, v := range payload {
		if k != "previews" {
			form.Set(k, formValue(v))
		}
	}
	form.Set("csrf_name", csrfName)
	form.Set("csrf_value", csrfValue)
	for i, preview := range previewList(payload["previews"]) {
		for k, v := range preview {
			form.Set(fmt.Sprintf("previews[%d][%s]", i, k), formValue(v))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return gderr.Wrap(err, gderr.CategoryInternal, "building request for %s", target)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gderr.Wrap(err, gderr.CategoryNetwork, "POST %s", target)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return gderr.New(gderr.CategoryNetwork, "POST request to %s failed with code %d: %s",
			req.URL.Path, resp.StatusCode, resp.Status)
	}
	// A successful submission redirects to the asset page; anything else
	// means the form was silently rejected.
	if !looksLikeAssetPage(resp.Request.URL) {
		return gderr.New(gderr.CategoryNetwork,
			"POST request with HTML form workaround to %s did not return expected data, upload probably failed",
			req.URL.Path)
	}
	return nil
}

// fetchCSRF loads the submission form and extracts the csrf_name/csrf_value
// hidden inputs, returning them along with the session cookies to echo back.
func (c *Client) fetchCSRF(ctx context.Context, target string) ([]*http.Cookie, string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", "", gderr.Wrap(err, gderr.CategoryInternal, "building request for %s", target)
	}
	tokenCookie := &http.Cookie{Name: "token", Value: c.token}
	req.AddCookie(tokenCookie)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", "", gderr.Wrap(err, gderr.CategoryNetwork, "GET %s", target)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, "", "", gderr.New(gderr.CategoryNetwork, "GET request to %s failed with code %d",
			req.URL.Path, resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, "", "", gderr.Wrap(err, gderr.CategoryNetwork, "parsing form at %s", req.URL.Path)
	}
	inputs := formInputValues(doc)
	csrfName, csrfValue := inputs["csrf_name"], inputs["csrf_value"]
	if csrfName == "" || csrfValue == "" {
		return nil, "", "", gderr.New(gderr.CategoryNetwork, "no CSRF token found in form at %s", req.URL.Path)
	}
	cookies := append(resp.Cookies(), tokenCookie)
	return cookies, csrfName, csrfValue, nil
}

// formInputValues collects name→value for all <input> elements in the
// document.
func formInputValues(doc *html.Node) map[string]string {
	values := map[string]string{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "input" {
			var name, value string
			for _, attr := range n.Attr {
				switch attr.Key {
				case "name":
					name = attr.Val
				case "value":
					value = attr.Val
				}
			}
			if name != "" {
				values[name] = value
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return values
}

// looksLikeAssetPage reports whether the final URL after redirects is an
// asset page (.../asset/<id>), which is where successful form submissions
// land. Ids start at 1, so 0 never matches.
func looksLikeAssetPage(u *url.URL) bool {
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[len(parts)-2] != "asset" {
		return false
	}
	id, err := strconv.Atoi(parts[len(parts)-1])
	return err == nil && id > 0
}

func formValue(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case bool:
		if value {
			return "1"
		}
		return "0"
	case float64:
		// JSON numbers; render integers without an exponent or decimals.
		if value == float64(int64(value)) {
			return strconv.FormatInt(int64(value), 10)
		}
		return strconv.FormatFloat(value, 'f', -1, 64)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
