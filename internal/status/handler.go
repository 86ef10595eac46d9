// Package status exposes a read-only HTTP surface over a running node's
// membership table, for operator visibility into a serve process. It is
// never consulted by the protocol itself.
package status

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/mcastellin/clustermemb/internal/membership"
)

// Handler registers routes on a gin.RouterGroup, matching the handler
// pattern shared across the rest of the admin surface.
type Handler interface {
	Register(group *gin.RouterGroup)
}

// memberView is the JSON shape returned for each table entry.
type memberView struct {
	ID        uint32 `json:"id"`
	Port      uint16 `json:"port"`
	Heartbeat int64  `json:"heartbeat"`
	Timestamp int64  `json:"timestamp"`
}

// Members exposes the live state of a membership.Table.
type Members struct {
	table *membership.Table
}

// NewMembers builds a Members handler over table.
func NewMembers(table *membership.Table) *Members {
	return &Members{table: table}
}

// Register implements Handler.
func (m *Members) Register(group *gin.RouterGroup) {
	group.GET("/members", m.listMembers)
	group.GET("/members/:id", m.getMember)
}

func (m *Members) listMembers(c *gin.Context) {
	entries := m.table.Snapshot()
	views := make([]memberView, 0, len(entries))
	for _, e := range entries {
		views = append(views, memberView{ID: e.ID, Port: e.Port, Heartbeat: e.Heartbeat, Timestamp: e.Timestamp})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })
	c.JSON(http.StatusOK, views)
}

func (m *Members) getMember(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	e, ok := m.table.Find(id)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, memberView{ID: e.ID, Port: e.Port, Heartbeat: e.Heartbeat, Timestamp: e.Timestamp})
}

var _ Handler = (*Members)(nil)
