// Package scrape extracts structured camera records from the origin site's
// HTML. Parsing is deliberately forgiving: containers missing the pieces we
// need are skipped and absent coordinates come back nil, never as an error.
package scrape

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/hclin/camradar/internal/camera"
)

// Site describes the origin site's literal markup conventions.
type Site struct {
	// SnapshotURLTemplate builds the deterministic snapshot URL for a camera
	// id. Must contain exactly one %s verb.
	SnapshotURLTemplate string
	// NameSuffix is the boilerplate phrase the origin appends to camera
	// headings, stripped when extracting display names.
	NameSuffix string
}

// DetailPage is the raw outcome of parsing a per-camera page. Lat and Lon are
// nil when the page does not publish that coordinate, which is a valid
// outcome for cameras the origin has not geotagged.
type DetailPage struct {
	Name        string
	LiveFeedURL string
	Lat         *float64
	Lon         *float64
}

var (
	camPathRe = regexp.MustCompile(`/cam/([^/?#]+)/?$`)
	latRe     = regexp.MustCompile(`^緯度[:：]\s*(-?[0-9]+(?:\.[0-9]+)?)`)
	lonRe     = regexp.MustCompile(`^經度[:：]\s*(-?[0-9]+(?:\.[0-9]+)?)`)
)

// blockSelector covers the block-level containers the origin prints its
// coordinate lines into.
const blockSelector = "div, p, li, span"

// SnapshotURL returns the deterministic snapshot image URL for a camera id.
func (s Site) SnapshotURL(id string) string {
	return fmt.Sprintf(s.SnapshotURLTemplate, id)
}

// ParseCameraList extracts camera summaries from a list page, in document
// order. A list item must carry both a link matching /cam/<id> and an image;
// anything else is skipped. Duplicate ids are possible and left to the caller
// to reconcile against the cache.
func (s Site) ParseCameraList(r io.Reader, contentType string) ([]camera.Summary, error) {
	doc, err := newDocument(r, contentType)
	if err != nil {
		return nil, err
	}

	var out []camera.Summary
	doc.Find("li").Each(func(_ int, item *goquery.Selection) {
		link := item.Find("a[href]").First()
		img := item.Find("img").First()
		if link.Length() == 0 || img.Length() == 0 {
			return
		}
		m := camPathRe.FindStringSubmatch(link.AttrOr("href", ""))
		if m == nil {
			return
		}
		id := m[1]

		name := strings.TrimSpace(item.Find("figcaption, .caption").First().Text())
		if name == "" {
			name = id
		}
		snapshot := strings.TrimSpace(img.AttrOr("src", ""))
		if snapshot == "" {
			snapshot = s.SnapshotURL(id)
		}
		out = append(out, camera.Summary{
			ID:          id,
			Name:        name,
			SnapshotURL: snapshot,
			LiveFeedURL: strings.TrimSpace(img.AttrOr("data-src", "")),
		})
	})
	return out, nil
}

// ParseCameraDetail extracts coordinates, name and live-feed URL from a
// per-camera page. Coordinates are matched first-occurrence-wins against the
// 緯度/經度 label lines; pages repeating a label keep the first value.
func (s Site) ParseCameraDetail(r io.Reader, contentType string) (DetailPage, error) {
	doc, err := newDocument(r, contentType)
	if err != nil {
		return DetailPage{}, err
	}

	var page DetailPage
	doc.Find(blockSelector).EachWithBreak(func(_ int, block *goquery.Selection) bool {
		text := strings.TrimSpace(block.Text())
		if page.Lat == nil {
			if m := latRe.FindStringSubmatch(text); m != nil {
				page.Lat = parseDegrees(m[1])
			}
		}
		if page.Lon == nil {
			if m := lonRe.FindStringSubmatch(text); m != nil {
				page.Lon = parseDegrees(m[1])
			}
		}
		return page.Lat == nil || page.Lon == nil
	})

	page.Name = strings.TrimSpace(strings.TrimSuffix(s.cameraHeading(doc), s.NameSuffix))
	page.LiveFeedURL = strings.TrimSpace(
		doc.Find("video, .video-placeholder").First().AttrOr("data-src", ""))
	return page, nil
}

// cameraHeading picks the heading naming the camera. Pages may open with a
// site-wide banner heading, so a heading carrying the origin's boilerplate
// suffix wins over mere document order.
func (s Site) cameraHeading(doc *goquery.Document) string {
	headings := doc.Find("h1, h2, h3")
	heading := strings.TrimSpace(headings.First().Text())
	if s.NameSuffix == "" {
		return heading
	}
	headings.EachWithBreak(func(_ int, h *goquery.Selection) bool {
		text := strings.TrimSpace(h.Text())
		if strings.Contains(text, s.NameSuffix) {
			heading = text
			return false
		}
		return true
	})
	return heading
}

func parseDegrees(raw string) *float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

// newDocument decodes the markup to UTF-8 before handing it to goquery; the
// origin serves Chinese pages whose charset cannot be assumed.
func newDocument(r io.Reader, contentType string) (*goquery.Document, error) {
	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, r); err != nil {
		return nil, fmt.Errorf("read markup: %w", err)
	}
	data := buf.Bytes()

	enc, _, _ := charset.DetermineEncoding(data, contentType)
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("decode markup: %w", err)
		}
		decoded = data
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(decoded))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}
	return doc, nil
}
