// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package insights

import (
	"github.com/tejzpr/thread-mcp/internal/content"
	"github.com/tejzpr/thread-mcp/internal/presenter"
)

// EntryID returns the insight id
func (i Insight) EntryID() string { return i.ID }

// EntryType returns the insight kind, which the type filter matches
func (i Insight) EntryType() string { return string(i.Kind) }

// EntryPriority returns the insight priority
func (i Insight) EntryPriority() content.Priority { return i.Priority }

// SearchFields returns the title, description and keywords for search
func (i Insight) SearchFields() []string {
	fields := make([]string, 0, len(i.Keywords)+2)
	fields = append(fields, i.Title, i.Description)
	return append(fields, i.Keywords...)
}

// EntryTarget prefers the email, then the first referenced thread
func (i Insight) EntryTarget() (presenter.Target, bool) {
	if i.EmailID != "" {
		return presenter.Target{Kind: content.KindEmail, ID: i.EmailID}, true
	}
	if len(i.ThreadIDs) > 0 {
		return presenter.Target{Kind: content.KindThread, ID: i.ThreadIDs[0]}, true
	}
	return presenter.Target{}, false
}

// EntryID returns the connection id
func (c Connection) EntryID() string { return c.ID }

// EntryType returns the kind of the related item
func (c Connection) EntryType() string { return string(c.TargetKind) }

// EntryPriority returns the connection priority
func (c Connection) EntryPriority() content.Priority { return c.Priority }

// SearchFields returns the title, reason and keywords for search
func (c Connection) SearchFields() []string {
	fields := make([]string, 0, len(c.Keywords)+2)
	fields = append(fields, c.Title, c.Reason)
	return append(fields, c.Keywords...)
}

// EntryTarget points at the related item
func (c Connection) EntryTarget() (presenter.Target, bool) {
	return presenter.Target{Kind: c.TargetKind, ID: c.TargetID}, c.TargetID != ""
}
