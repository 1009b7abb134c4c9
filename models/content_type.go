package models

import (
	"fmt"
	"strings"
)

type ContentType string

const (
	ContentTypeArticle ContentType = "ARTICLE"
	ContentTypeComment ContentType = "COMMENT"
	ContentTypePost    ContentType = "POST"
	ContentTypeImage   ContentType = "IMAGE"
)

// ContentTypes lists every known content type.
var ContentTypes = []ContentType{
	ContentTypeArticle,
	ContentTypeComment,
	ContentTypePost,
	ContentTypeImage,
}

// Weight is the review cost of one item of this type. Always positive for known types.
func (t ContentType) Weight() int {
	switch t {
	case ContentTypeArticle:
		return 3
	case ContentTypeComment, ContentTypePost, ContentTypeImage:
		return 1
	}
	return 0
}

func (t ContentType) Valid() bool {
	return t.Weight() > 0
}

// ParseContentType matches a content type name case-insensitively.
func ParseContentType(name string) (ContentType, error) {
	for _, t := range ContentTypes {
		if strings.EqualFold(string(t), strings.TrimSpace(name)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown content type %q", name)
}

// ContentIdentity is the (contentId, contentType) pair identifying one content item.
type ContentIdentity struct {
	ContentID   int64       `json:"content_id"`
	ContentType ContentType `json:"content_type"`
}

func (c ContentIdentity) String() string {
	return fmt.Sprintf("%s:%d", c.ContentType, c.ContentID)
}
