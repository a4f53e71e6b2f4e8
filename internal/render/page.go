package render

import (
	"strings"
	"sync"
)

// Item is one entry of a list. Slot is empty for static items.
type Item struct {
	Label string `json:"label"`
	Slot  string `json:"slot,omitempty"`
	Text  string `json:"text,omitempty"`
}

// Render returns the item as it reads on screen.
func (i Item) Render() string {
	return i.Label + i.Text
}

// Snapshot is a copy of the page contents.
type Snapshot struct {
	Text    map[string]string `json:"text"`
	Lists   map[string][]Item `json:"lists"`
	Visible map[string]bool   `json:"visible"`
}

// Page is an in-memory document. It is safe for concurrent use.
type Page struct {
	mu      sync.RWMutex
	text    map[string]string
	lists   map[string][]Item
	visible map[string]bool
}

// NewPage creates a page containing the standard element ids.
func NewPage() *Page {
	p := &Page{
		text:    map[string]string{UserLocation: ""},
		lists:   make(map[string][]Item),
		visible: map[string]bool{LoadingSpinner: false},
	}
	for _, id := range []string{TodayTimes, TomorrowTimes, UpcomingTimes} {
		p.lists[id] = nil
	}
	return p
}

func (p *Page) SetText(id, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.text[id]; ok {
		p.text[id] = text
		return nil
	}
	for listID, items := range p.lists {
		for i := range items {
			if items[i].Slot == id {
				p.lists[listID][i].Text = text
				return nil
			}
		}
	}
	return ErrNoElement
}

func (p *Page) AppendListItem(listID, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lists[listID] = append(p.lists[listID], Item{Label: text})
}

func (p *Page) AppendLiveItem(listID, label, slotID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lists[listID] = append(p.lists[listID], Item{Label: label, Slot: slotID})
}

func (p *Page) ClearList(listID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lists[listID] = nil
}

func (p *Page) SetVisible(id string, visible bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible[id] = visible
}

// Text returns the text of an element or live slot.
func (p *Page) Text(id string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if t, ok := p.text[id]; ok {
		return t, true
	}
	for _, items := range p.lists {
		for _, it := range items {
			if it.Slot == id {
				return it.Text, true
			}
		}
	}
	return "", false
}

// Lines returns the rendered items of a list.
func (p *Page) Lines(listID string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	lines := make([]string, 0, len(p.lists[listID]))
	for _, it := range p.lists[listID] {
		lines = append(lines, it.Render())
	}
	return lines
}

// Visible reports the state of an indicator.
func (p *Page) Visible(id string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.visible[id]
}

// Snapshot copies the page.
func (p *Page) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s := Snapshot{
		Text:    make(map[string]string, len(p.text)),
		Lists:   make(map[string][]Item, len(p.lists)),
		Visible: make(map[string]bool, len(p.visible)),
	}
	for k, v := range p.text {
		s.Text[k] = v
	}
	for k, v := range p.lists {
		s.Lists[k] = append([]Item(nil), v...)
	}
	for k, v := range p.visible {
		s.Visible[k] = v
	}
	return s
}

// String renders the whole page as plain text.
func (p *Page) String() string {
	var b strings.Builder
	if loc, _ := p.Text(UserLocation); loc != "" {
		b.WriteString(loc)
		b.WriteString("\n")
	}
	if p.Visible(LoadingSpinner) {
		b.WriteString("Loading...\n")
	}
	sections := []struct{ title, id string }{
		{"Today", TodayTimes},
		{"Tomorrow", TomorrowTimes},
		{"Upcoming", UpcomingTimes},
	}
	for _, s := range sections {
		lines := p.Lines(s.id)
		if len(lines) == 0 {
			continue
		}
		b.WriteString("\n" + s.title + "\n")
		for _, l := range lines {
			b.WriteString("  " + l + "\n")
		}
	}
	return b.String()
}
