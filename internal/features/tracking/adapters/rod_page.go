package adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"gel-tracker/internal/features/tracking/ports"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
)

// errForeignElement is returned when an element handle did not come from a RodPage.
var errForeignElement = errors.New("element does not belong to a rod page")

const (
	hideOverlaysJS = `(selectors) => {
		let hidden = 0;
		for (const sel of selectors) {
			let nodes;
			try { nodes = document.querySelectorAll(sel); } catch (e) { continue; }
			for (const node of nodes) {
				node.style.setProperty('display', 'none', 'important');
				hidden++;
			}
		}
		if (document.body) document.body.style.setProperty('overflow', 'auto', 'important');
		return hidden;
	}`

	editableJS = `() => !this.disabled && !this.readOnly`

	labelJS = `() => (this.innerText || this.value || this.getAttribute('aria-label') || '').trim()`

	submitFormJS = `() => {
		const form = this.form || this.closest('form');
		if (!form) return false;
		if (typeof form.requestSubmit === 'function') form.requestSubmit();
		else form.submit();
		return true;
	}`

	bodyTextJS = `() => document.body ? document.body.innerText : ''`

	buttonCandidates = `.gv-search-button, button, input[type="submit"], input[type="button"], [role="button"], a`
)

// rodElement wraps an element together with the selector that found it.
type rodElement struct {
	el          *rod.Element
	description string
}

func (e *rodElement) Describe() string { return e.description }

// RodPage implements ports.Page on a rod page.
type RodPage struct {
	page *rod.Page
}

// Navigate loads url and waits for DOMContentLoaded.
func (p *RodPage) Navigate(ctx context.Context, url string) error {
	page := p.page.Context(ctx)

	wait := page.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := page.Navigate(url); err != nil {
		return err
	}
	wait()

	return ctx.Err()
}

// HideOverlays hides every element matching selectors.
func (p *RodPage) HideOverlays(ctx context.Context, selectors []string) error {
	_, err := p.page.Context(ctx).Eval(hideOverlaysJS, selectors)
	return err
}

// FindVisible returns the first visible, editable element matching selectors in order.
func (p *RodPage) FindVisible(ctx context.Context, selectors []string) (ports.Element, error) {
	page := p.page.Context(ctx)

	for _, sel := range selectors {
		els, err := page.Elements(sel)
		if err != nil {
			return nil, err
		}
		for _, el := range els {
			if !isVisible(el) {
				continue
			}
			res, err := el.Eval(editableJS)
			if err != nil || !res.Value.Bool() {
				continue
			}
			return &rodElement{el: el, description: sel}, nil
		}
	}
	return nil, nil
}

// SelectAll focuses el and selects its current content so typing replaces it.
func (p *RodPage) SelectAll(ctx context.Context, el ports.Element) error {
	re, err := unwrap(el)
	if err != nil {
		return err
	}
	target := re.el.Context(ctx)

	if err := target.Click(proto.InputMouseButtonLeft, 3); err != nil {
		if err := target.Focus(); err != nil {
			return fmt.Errorf("failed to focus %s: %w", re.description, err)
		}
	}
	return target.SelectAllText()
}

// TypeInto types text one key at a time with delay between keys.
func (p *RodPage) TypeInto(ctx context.Context, el ports.Element, text string, delay time.Duration) error {
	if _, err := unwrap(el); err != nil {
		return err
	}
	page := p.page.Context(ctx)

	for i, r := range text {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		var err error
		if r < unicode.MaxASCII && unicode.IsPrint(r) {
			err = page.Keyboard.Type(input.Key(r))
		} else {
			err = page.InsertText(string(r))
		}
		if err != nil {
			return fmt.Errorf("failed to type %q: %w", r, err)
		}
	}
	return nil
}

// FindButtonByText returns the first visible button or link whose label equals one of texts.
func (p *RodPage) FindButtonByText(ctx context.Context, texts []string) (ports.Element, error) {
	els, err := p.page.Context(ctx).Elements(buttonCandidates)
	if err != nil {
		return nil, err
	}

	for _, el := range els {
		res, err := el.Eval(labelJS)
		if err != nil {
			continue
		}
		label := res.Value.Str()
		if !matchesLabel(label, texts) || !isVisible(el) {
			continue
		}
		return &rodElement{el: el, description: fmt.Sprintf("button %q", label)}, nil
	}
	return nil, nil
}

// Click clicks el once with the left button.
func (p *RodPage) Click(ctx context.Context, el ports.Element) error {
	re, err := unwrap(el)
	if err != nil {
		return err
	}
	return re.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
}

// SubmitForm submits the form enclosing el. It reports false when there is none.
func (p *RodPage) SubmitForm(ctx context.Context, el ports.Element) (bool, error) {
	re, err := unwrap(el)
	if err != nil {
		return false, err
	}
	res, err := re.el.Context(ctx).Eval(submitFormJS)
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}

// PressEnter presses Enter on the focused element.
func (p *RodPage) PressEnter(ctx context.Context) error {
	return p.page.Context(ctx).Keyboard.Press(input.Enter)
}

// EvaluateText returns the rendered body text.
func (p *RodPage) EvaluateText(ctx context.Context) (string, error) {
	res, err := p.page.Context(ctx).Eval(bodyTextJS)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func unwrap(el ports.Element) (*rodElement, error) {
	re, ok := el.(*rodElement)
	if !ok || re == nil || re.el == nil {
		return nil, errForeignElement
	}
	return re, nil
}

func isVisible(el *rod.Element) bool {
	visible, err := el.Visible()
	return err == nil && visible
}

// matchesLabel reports whether the whole label equals one of texts, ignoring case
// and surrounding or repeated whitespace.
func matchesLabel(label string, texts []string) bool {
	label = strings.Join(strings.Fields(label), " ")
	if label == "" {
		return false
	}
	for _, t := range texts {
		if strings.EqualFold(label, t) {
			return true
		}
	}
	return false
}
