package model

import (
	"strings"
	"time"
)

// Nullable is a patch field that distinguishes an absent field from an
// explicit null and from a value.
type Nullable[T any] struct {
	set   bool
	valid bool
	value T
}

// Null returns a field that clears the target.
func Null[T any]() Nullable[T] { return Nullable[T]{set: true} }

// Some returns a field that sets the target to v.
func Some[T any](v T) Nullable[T] { return Nullable[T]{set: true, valid: true, value: v} }

// NullableFrom maps nil to an explicit null and anything else to Some.
func NullableFrom[T any](p *T) Nullable[T] {
	if p == nil {
		return Null[T]()
	}
	return Some(*p)
}

func (n Nullable[T]) IsSet() bool  { return n.set }
func (n Nullable[T]) IsNull() bool { return n.set && !n.valid }

// Get returns the value and whether one is present.
func (n Nullable[T]) Get() (T, bool) { return n.value, n.set && n.valid }

// Ptr returns nil for an explicit null or absent field, else a pointer to a copy.
func (n Nullable[T]) Ptr() *T {
	if !n.set || !n.valid {
		return nil
	}
	v := n.value
	return &v
}

// apply overwrites *dst when the field is present.
func (n Nullable[T]) apply(dst **T) {
	if n.set {
		*dst = n.Ptr()
	}
}

// BookmarkPatch is a partial update. Nil pointers and unset Nullable fields
// leave the target untouched. A non-nil Tags slice replaces the whole set.
type BookmarkPatch struct {
	Title        *string
	URL          *string
	Description  *string
	Favicon      *string
	Thumbnail    *string
	Duration     *string
	CollectionID Nullable[string]
	Tags         []string
	IsFavorite   *bool
	HasDarkIcon  *bool
	ArchivedAt   Nullable[time.Time]
	TrashedAt    Nullable[time.Time]
}

// IsEmpty reports whether the patch changes nothing.
func (p BookmarkPatch) IsEmpty() bool {
	return p.Title == nil && p.URL == nil && p.Description == nil && p.Favicon == nil &&
		p.Thumbnail == nil && p.Duration == nil && !p.CollectionID.IsSet() && p.Tags == nil &&
		p.IsFavorite == nil && p.HasDarkIcon == nil && !p.ArchivedAt.IsSet() && !p.TrashedAt.IsSet()
}

// Validate rejects patches that blank required fields or would put a
// bookmark into two partitions at once.
func (p BookmarkPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return NewValidationError("Title cannot be empty")
	}
	if p.URL != nil && strings.TrimSpace(*p.URL) == "" {
		return NewValidationError("URL cannot be empty")
	}
	_, archiving := p.ArchivedAt.Get()
	_, trashing := p.TrashedAt.Get()
	if archiving && trashing {
		return NewValidationError("A bookmark cannot be archived and trashed at once")
	}
	if p.CollectionID.IsSet() && !p.CollectionID.IsNull() {
		if id, _ := p.CollectionID.Get(); id == "" || id == AllCollectionID {
			return NewValidationError("Invalid collection: %q", id)
		}
	}
	return nil
}

// ValidateFor checks the patch against the stored bookmark it will be
// applied to. A result that is both archived and trashed is rejected.
func (p BookmarkPatch) ValidateFor(b Bookmark) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if out := p.Apply(b); out.ArchivedAt != nil && out.TrashedAt != nil {
		return NewValidationError("A bookmark cannot be archived and trashed at once")
	}
	return nil
}

// Apply returns b with the patch merged in.
func (p BookmarkPatch) Apply(b Bookmark) Bookmark {
	out := b.Clone()
	setString(&out.Title, p.Title)
	setString(&out.URL, p.URL)
	setString(&out.Description, p.Description)
	setString(&out.Favicon, p.Favicon)
	setString(&out.Thumbnail, p.Thumbnail)
	setString(&out.Duration, p.Duration)
	p.CollectionID.apply(&out.CollectionID)
	if p.Tags != nil {
		out.Tags = NormalizeTags(p.Tags)
	}
	if p.IsFavorite != nil {
		out.IsFavorite = *p.IsFavorite
	}
	if p.HasDarkIcon != nil {
		out.HasDarkIcon = *p.HasDarkIcon
	}
	p.ArchivedAt.apply(&out.ArchivedAt)
	p.TrashedAt.apply(&out.TrashedAt)
	return out
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

// Lifecycle patches.

func ArchivePatch(now time.Time) BookmarkPatch {
	return BookmarkPatch{ArchivedAt: Some(now.UTC())}
}

func UnarchivePatch() BookmarkPatch {
	return BookmarkPatch{ArchivedAt: Null[time.Time]()}
}

func TrashPatch(now time.Time) BookmarkPatch {
	return BookmarkPatch{TrashedAt: Some(now.UTC())}
}

// UntrashPatch returns a trashed bookmark to Active, clearing any stale
// archive timestamp as well.
func UntrashPatch() BookmarkPatch {
	return BookmarkPatch{TrashedAt: Null[time.Time](), ArchivedAt: Null[time.Time]()}
}

func FavoritePatch(v bool) BookmarkPatch {
	return BookmarkPatch{IsFavorite: &v}
}

// CollectionPatch is a partial collection update.
type CollectionPatch struct {
	Name  *string
	Icon  *string
	Color *string
}

func (p CollectionPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return NewValidationError("Name cannot be empty")
	}
	var icon, color string
	if p.Icon != nil {
		icon = *p.Icon
		if icon == "" {
			return NewValidationError("Icon cannot be empty")
		}
	}
	if p.Color != nil {
		color = *p.Color
		if color == "" {
			return NewValidationError("Color cannot be empty")
		}
	}
	return validateStyle(icon, color)
}

func (p CollectionPatch) Apply(c Collection) Collection {
	setString(&c.Name, p.Name)
	setString(&c.Icon, p.Icon)
	setString(&c.Color, p.Color)
	return c
}

// TagPatch is a partial tag update.
type TagPatch struct {
	Name  *string
	Color *string
}

func (p TagPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return NewValidationError("Name cannot be empty")
	}
	return nil
}

func (p TagPatch) Apply(t Tag) Tag {
	setString(&t.Name, p.Name)
	setString(&t.Color, p.Color)
	if t.Color == "" {
		t.Color = DefaultTagColor
	}
	return t
}
