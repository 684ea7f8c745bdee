package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/skilltrack/internal/app/models/dto/enums"
)

func TestResponseOrdering(t *testing.T) {
	r := NewResponse().
		Class(ClassItem{ID: 1, Name: "First Aid"}).
		Message(enums.CodeOK, "ok").
		Skill(SkillItem{ID: 2, Name: "Fire Safety", State: enums.SkillPassed})

	items := r.Items()
	require.Len(t, items, 3)
	assert.IsType(t, MessageItem{}, items[0])
	assert.IsType(t, ClassItem{}, items[1])
	assert.IsType(t, SkillItem{}, items[2])
	assert.False(t, r.Failed())
	assert.Equal(t, enums.CodeOK, r.Code())
}

func TestResponseRedirectReplacesEntities(t *testing.T) {
	r := NewResponse().
		Message(enums.CodeOK, "logged in").
		Class(ClassItem{ID: 1}).
		Redirect("/index.html").
		Attendee(AttendeeItem{ID: 3})

	items := r.Items()
	require.Len(t, items, 2)
	assert.IsType(t, MessageItem{}, items[0])
	assert.Equal(t, RedirectItem{Type: enums.ItemRedirect, Where: "/index.html"}, items[1])

	where, ok := r.RedirectTarget()
	assert.True(t, ok)
	assert.Equal(t, "/index.html", where)
}

func TestResponseJSON(t *testing.T) {
	r := NewResponse().
		Message(enums.CodeOK, "ok").
		Class(ClassItem{ID: 7, Name: "Forklift Operation", Action: ActionRef(enums.ActionNone)}).
		Class(ClassItem{ID: 8, Name: "Fire Safety", Action: ActionRef(enums.ActionJoin)})

	out, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Len(t, decoded, 3)
	assert.Equal(t, "message", decoded[0]["type"])
	assert.Equal(t, float64(0), decoded[0]["code"])
	assert.Nil(t, decoded[1]["action"])
	assert.Equal(t, "join", decoded[2]["action"])
}

func TestResponseFailed(t *testing.T) {
	r := NewResponse().FieldMessage(enums.CodeInvalidField, "max", "max is out of range")
	assert.True(t, r.Failed())
	assert.Equal(t, enums.CodeInvalidField, r.Code())
	assert.Equal(t, "max", r.Messages()[0].Field)
}
