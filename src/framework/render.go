package framework

import (
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"cmdbd/src/helpers"
)

// SummarySeparator joins the resolved summary fields of an instance.
const SummarySeparator = " | "

// UserLookup resolves user ids to display names. Implemented outside the
// rendering core.
type UserLookup interface {
	ResolveDisplayName(userID int64) (string, error)
}

// TypeResolver resolves a type id during batch rendering.
type TypeResolver func(typeID int64) (*CmdbType, error)

// TypeInformation is the type snapshot embedded in a render result.
type TypeInformation struct {
	TypeID  int64  `json:"type_id"`
	Name    string `json:"name"`
	Label   string `json:"label"`
	Version string `json:"version"`
}

// ObjectInformation is the object metadata of a render result, with resolved
// display names and formatted timestamps.
type ObjectInformation struct {
	ObjectID     int64  `json:"object_id"`
	Active       bool   `json:"active"`
	AuthorID     int64  `json:"author_id"`
	AuthorName   string `json:"author_name"`
	EditorID     int64  `json:"editor_id"`
	EditorName   string `json:"editor_name"`
	CreationTime string `json:"creation_time"`
	LastEditTime string `json:"last_edit_time"`
}

// RenderedField is one object value merged with its field definition. Values
// whose key has no matching definition are retained and flagged as unmapped
// (schema drift after a type edit), never dropped.
type RenderedField struct {
	Name     string      `json:"name"`
	Label    string      `json:"label"`
	Kind     FieldKind   `json:"kind,omitempty"`
	Value    interface{} `json:"value"`
	Unmapped bool        `json:"unmapped,omitempty"`
}

// ResolvedLink is an external link with its placeholders filled in.
type ResolvedLink struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
	Href  string `json:"href"`
}

// RenderResult is the derived, display-ready projection of a raw object
// merged with its type's schema. Regenerated on every read, never persisted.
type RenderResult struct {
	ObjectInformation ObjectInformation `json:"object_information"`
	TypeInformation   TypeInformation   `json:"type_information"`
	Fields            []RenderedField   `json:"fields"`
	SummaryLine       string            `json:"summary_line"`
	ExternalLinks     []ResolvedLink    `json:"external_links,omitempty"`
}

// Renderer merges raw objects with their type schema. Stateless apart from
// its collaborators; independent objects may be rendered concurrently.
type Renderer struct {
	users  UserLookup
	logger *zap.SugaredLogger
}

func NewRenderer(users UserLookup, logger *zap.SugaredLogger) *Renderer {
	return &Renderer{users: users, logger: logger}
}

// Render produces the render result for one object. An object referencing a
// different type fails with TypeMismatchError and no partial result.
func (r *Renderer) Render(object *CmdbObject, t *CmdbType) (*RenderResult, error) {
	if object.TypeID != t.PublicID {
		return nil, &TypeMismatchError{
			ObjectID:     object.PublicID,
			ObjectTypeID: object.TypeID,
			TypeID:       t.PublicID,
		}
	}

	result := &RenderResult{
		ObjectInformation: ObjectInformation{
			ObjectID:     object.PublicID,
			Active:       object.Active,
			AuthorID:     object.AuthorID,
			AuthorName:   r.displayName(object.AuthorID),
			EditorID:     object.EditorID,
			EditorName:   r.displayName(object.EditorID),
			CreationTime: helpers.FormatTimestamp(object.CreationTime),
			LastEditTime: helpers.FormatTimestamp(object.LastEditTime),
		},
		TypeInformation: TypeInformation{
			TypeID:  t.PublicID,
			Name:    t.Name,
			Label:   t.Label,
			Version: t.Version,
		},
	}

	result.Fields = r.mergeFields(object, t)
	result.SummaryLine = r.summaryLine(object, t)
	result.ExternalLinks = r.resolveLinks(object, t)
	return result, nil
}

// RenderMany renders a batch of objects concurrently. The shared type
// definitions are read-only during rendering, so objects are independent. An
// object whose type cannot be resolved (e.g. the type was deleted after the
// object referenced it) is unrenderable and skipped, not a batch failure.
func (r *Renderer) RenderMany(objects []*CmdbObject, resolve TypeResolver) []*RenderResult {
	slots := make([]*RenderResult, len(objects))
	var wg sync.WaitGroup
	for i := range objects {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			object := objects[i]
			t, err := resolve(object.TypeID)
			if err != nil {
				r.logger.Warnf("object %d is unrenderable: %v", object.PublicID, err)
				return
			}
			rendered, err := r.Render(object, t)
			if err != nil {
				r.logger.Warnf("object %d is unrenderable: %v", object.PublicID, err)
				return
			}
			slots[i] = rendered
		}(i)
	}
	wg.Wait()

	results := make([]*RenderResult, 0, len(objects))
	for _, rendered := range slots {
		if rendered != nil {
			results = append(results, rendered)
		}
	}
	return results
}

// mergeFields matches the object's value keys against the type's field
// definitions, in definition order, followed by any unmapped values.
func (r *Renderer) mergeFields(object *CmdbObject, t *CmdbType) []RenderedField {
	fields := make([]RenderedField, 0, len(object.Fields))
	mapped := make(map[string]bool, len(t.Fields))

	for i := range t.Fields {
		def := &t.Fields[i]
		value, present := object.Fields[def.Name]
		if !present {
			value = def.DefaultValue
		}
		mapped[def.Name] = true
		fields = append(fields, RenderedField{
			Name:  def.Name,
			Label: def.Label,
			Kind:  def.Kind,
			Value: value,
		})
	}

	for name, value := range object.Fields {
		if mapped[name] {
			continue
		}
		fields = append(fields, RenderedField{
			Name:     name,
			Label:    name,
			Value:    value,
			Unmapped: true,
		})
	}
	return fields
}

// summaryLine resolves the summary templates against the object's values in
// order and joins the non-empty results. A template referencing a missing
// field resolves to empty and is skipped, leaving no extra separators.
func (r *Renderer) summaryLine(object *CmdbObject, t *CmdbType) string {
	parts := make([]string, 0, len(t.RenderMeta.Summaries))
	for _, fieldName := range t.RenderMeta.Summaries {
		value, present := object.Fields[fieldName]
		if !present {
			continue
		}
		resolved := helpers.ValueToString(value)
		if resolved == "" {
			continue
		}
		parts = append(parts, resolved)
	}
	return strings.Join(parts, SummarySeparator)
}

// resolveLinks fills each link template's {} placeholders with the object's
// field values. A link referencing a missing or empty field is omitted.
func (r *Renderer) resolveLinks(object *CmdbObject, t *CmdbType) []ResolvedLink {
	var links []ResolvedLink
	for _, link := range t.RenderMeta.ExternalLinks {
		href := link.Href
		complete := true
		for _, fieldName := range link.Fields {
			value, present := object.Fields[fieldName]
			resolved := helpers.ValueToString(value)
			if !present || resolved == "" {
				complete = false
				break
			}
			href = strings.Replace(href, "{}", resolved, 1)
		}
		if !complete {
			continue
		}
		links = append(links, ResolvedLink{
			Name:  link.Name,
			Label: link.Label,
			Icon:  link.Icon,
			Href:  href,
		})
	}
	return links
}

func (r *Renderer) displayName(userID int64) string {
	if userID == 0 {
		return ""
	}
	if r.users == nil {
		return strconv.FormatInt(userID, 10)
	}
	name, err := r.users.ResolveDisplayName(userID)
	if err != nil || name == "" {
		// Lookup miss falls back to the raw id.
		return strconv.FormatInt(userID, 10)
	}
	return name
}
