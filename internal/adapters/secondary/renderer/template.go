// Package renderer paints slide decks as HTML for the presentation host.
package renderer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"

	"github.com/zorro901/presenotion/internal/domain/entities"
)

// HTMLRenderer implements ports.Renderer using Go templates
type HTMLRenderer struct {
	templates    *template.Template
	baseFontSize int
}

// slideView is the template data of one slide
type slideView struct {
	ID       string
	Position int
	Number   int
	Total    int
	Title    string
	FontSize int
	Body     template.HTML
	Hidden   bool
}

func newSlideView(s *entities.Slide, total int, current int) slideView {
	return slideView{
		ID:       s.ID,
		Position: s.Position,
		Number:   s.Position + 1,
		Total:    total,
		Title:    s.Title,
		FontSize: s.FontSize,
		Body:     template.HTML(renderBlocks(s.Blocks)), // #nosec G203 - sanitized by blockSanitizer
		Hidden:   s.Position != current,
	}
}

// NewHTMLRenderer creates a new template-based renderer. The page measures
// slide content at baseFontSize before asking the host for a fit.
func NewHTMLRenderer(baseFontSize int) (*HTMLRenderer, error) {
	if baseFontSize <= 0 {
		return nil, fmt.Errorf("base font size must be positive, got %d", baseFontSize)
	}

	tmpl := template.New("presentation")

	if _, err := tmpl.Parse(presentationTemplate); err != nil {
		return nil, fmt.Errorf("parsing presentation template: %w", err)
	}

	if _, err := tmpl.New("slide").Parse(slideTemplate); err != nil {
		return nil, fmt.Errorf("parsing slide template: %w", err)
	}

	return &HTMLRenderer{templates: tmpl, baseFontSize: baseFontSize}, nil
}

// RenderPresentation renders the page hosting every slide of the deck. Only
// the first slide is visible until the host navigates.
func (r *HTMLRenderer) RenderPresentation(ctx context.Context, deck *entities.SlideDeck) ([]byte, error) {
	if deck == nil {
		return nil, errors.New("deck cannot be nil")
	}

	total := deck.SlideCount()
	slides := make([]slideView, 0, total)
	for i := range deck.Slides {
		slides = append(slides, newSlideView(&deck.Slides[i], total, 0))
	}

	data := struct {
		Title        string
		Total        int
		BaseFontSize int
		Slides       []slideView
	}{
		Title:        deck.Title,
		Total:        total,
		BaseFontSize: r.baseFontSize,
		Slides:       slides,
	}

	var buf bytes.Buffer
	if err := r.templates.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing presentation template: %w", err)
	}

	return buf.Bytes(), nil
}

// RenderSlide renders a single slide as an HTML fragment
func (r *HTMLRenderer) RenderSlide(ctx context.Context, s *entities.Slide, total int) ([]byte, error) {
	if s == nil {
		return nil, errors.New("slide cannot be nil")
	}

	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, "slide", newSlideView(s, total, s.Position)); err != nil {
		return nil, fmt.Errorf("executing slide template: %w", err)
	}

	return buf.Bytes(), nil
}

const slideTemplate = `<section class="slide" id="{{.ID}}" data-position="{{.Position}}"{{if .Hidden}} hidden{{end}} style="font-size: {{.FontSize}}px">
    <h1 class="slide-title">{{.Title}}</h1>
    <div class="slide-body">{{.Body}}</div>
    <footer class="slide-number">{{.Number}} / {{.Total}}</footer>
</section>`

const presentationTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        body, html { margin: 0; padding: 0; width: 100%; height: 100%; overflow: hidden; }
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; background: #fff; color: #37352f; }
        body.closed .slide { display: none; }
        .slide { box-sizing: border-box; height: 100vh; padding: 4vh 6vw; display: flex; flex-direction: column; }
        .slide[hidden] { display: none; }
        .slide-title { font-size: 2em; margin: 0 0 0.5em; }
        .slide-body { flex: 1; }
        .slide-body pre { background: #f7f6f3; padding: 1em; border-radius: 4px; white-space: pre-wrap; }
        .slide-body code { background: #f7f6f3; padding: 0.1em 0.3em; border-radius: 3px; }
        .slide-body blockquote { border-left: 3px solid #37352f; padding-left: 1em; margin-left: 0; }
        .slide-body img { max-width: 100%; max-height: 60vh; }
        .slide-body .unsupported { color: #9b9a97; font-style: italic; }
        .slide-number { text-align: right; font-size: 0.6em; color: #9b9a97; }
    </style>
</head>
<body>
    <main class="presentation" data-total="{{.Total}}" data-base-font-size="{{.BaseFontSize}}">
        {{range .Slides}}{{template "slide" .}}
        {{end}}
    </main>
    <script>
    (function () {
        var slides = Array.prototype.slice.call(document.querySelectorAll('.slide'));
        var current = 0;
        var baseFontSize = parseInt(document.querySelector('.presentation').getAttribute('data-base-font-size'), 10);
        var navKeys = ['ArrowRight', 'ArrowLeft', 'ArrowUp', 'ArrowDown', 'PageUp', 'PageDown', ' ', 'Home', 'End', 'Backspace'];

        function post(path, body) {
            return fetch(path, {
                method: 'POST',
                headers: { 'Content-Type': 'application/json' },
                body: JSON.stringify(body)
            }).catch(function () {});
        }

        // heights measures the current slide at the base font size and then
        // restores the fitted size, so repeated measurements agree
        function heights() {
            var slide = slides[current];
            var body = slide ? slide.querySelector('.slide-body') : null;
            if (!body) {
                return { contentHeight: 0, viewportHeight: window.innerHeight };
            }
            var fitted = slide.style.fontSize;
            slide.style.fontSize = baseFontSize + 'px';
            var contentHeight = body.scrollHeight;
            slide.style.fontSize = fitted;
            return { contentHeight: contentHeight, viewportHeight: window.innerHeight };
        }

        function show(index) {
            slides.forEach(function (s, i) { s.hidden = i !== index; });
            current = index;
            post('/api/measure', heights());
        }

        document.addEventListener('keydown', function (e) {
            var t = e.target || {};
            var target = {
                tag: (t.tagName || '').toLowerCase(),
                contentEditable: !!t.isContentEditable,
                role: t.getAttribute ? (t.getAttribute('role') || '') : ''
            };
            if (!target.contentEditable && ['input', 'textarea', 'select'].indexOf(target.tag) < 0 && navKeys.indexOf(e.key) >= 0) {
                e.preventDefault();
            }
            post('/api/keys', { key: e.key, target: target });
        });

        window.addEventListener('resize', function () {
            post('/api/resize', heights());
        });

        var ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');
        ws.onmessage = function (ev) {
            var msg = JSON.parse(ev.data);
            switch (msg.type) {
            case 'navigate':
                show(msg.data.currentIndex);
                break;
            case 'fontsize':
                var slide = slides[msg.data.position];
                if (slide) { slide.style.fontSize = msg.data.fontSize + 'px'; }
                break;
            case 'deck':
                location.reload();
                break;
            case 'closed':
                document.body.classList.add('closed');
                break;
            }
        };

        show(current);
    })();
    </script>
</body>
</html>`
