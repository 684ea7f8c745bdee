package dto

import (
	"encoding/json"

	"github.com/yigit/skilltrack/internal/app/models/dto/enums"
)

// Response is the ordered list of result items returned for one command.
// Messages come first. A redirect, when present, is the only non-message item:
// setting one drops any entity items and later entities are ignored.
type Response struct {
	messages []MessageItem
	entities []interface{}
	redirect *RedirectItem
}

// NewResponse creates an empty response
func NewResponse() *Response {
	return &Response{}
}

// Message appends a message item
func (r *Response) Message(code enums.ResultCode, text string) *Response {
	r.messages = append(r.messages, MessageItem{Type: enums.ItemMessage, Code: code, Text: text})
	return r
}

// FieldMessage appends a message item naming the offending input field
func (r *Response) FieldMessage(code enums.ResultCode, field, text string) *Response {
	r.messages = append(r.messages, MessageItem{Type: enums.ItemMessage, Code: code, Text: text, Field: field})
	return r
}

// Class appends a class item
func (r *Response) Class(item ClassItem) *Response {
	item.Type = enums.ItemClass
	return r.add(item)
}

// Attendee appends an attendee item
func (r *Response) Attendee(item AttendeeItem) *Response {
	item.Type = enums.ItemAttendee
	return r.add(item)
}

// Skill appends a skill item
func (r *Response) Skill(item SkillItem) *Response {
	item.Type = enums.ItemSkill
	return r.add(item)
}

// Redirect sets the redirect directive, replacing entity items
func (r *Response) Redirect(where string) *Response {
	r.redirect = &RedirectItem{Type: enums.ItemRedirect, Where: where}
	r.entities = nil
	return r
}

func (r *Response) add(item interface{}) *Response {
	if r.redirect != nil {
		return r
	}
	r.entities = append(r.entities, item)
	return r
}

// Code returns the code of the first message, or CodeOK when there is none
func (r *Response) Code() enums.ResultCode {
	if len(r.messages) == 0 {
		return enums.CodeOK
	}
	return r.messages[0].Code
}

// Failed reports whether any message carries a non-zero code
func (r *Response) Failed() bool {
	for _, m := range r.messages {
		if !m.Code.IsSuccess() {
			return true
		}
	}
	return false
}

// Messages returns the message items
func (r *Response) Messages() []MessageItem {
	return r.messages
}

// RedirectTarget returns the redirect location, if any
func (r *Response) RedirectTarget() (string, bool) {
	if r.redirect == nil {
		return "", false
	}
	return r.redirect.Where, true
}

// Items returns every item in wire order
func (r *Response) Items() []interface{} {
	items := make([]interface{}, 0, len(r.messages)+len(r.entities)+1)
	for _, m := range r.messages {
		items = append(items, m)
	}
	if r.redirect != nil {
		return append(items, *r.redirect)
	}
	return append(items, r.entities...)
}

// MarshalJSON renders the response as a JSON array of items
func (r *Response) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Items())
}
