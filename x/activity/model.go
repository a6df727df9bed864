package activity

import (
	"context"
	"encoding/json"

	"github.com/inkwell-social/inkwell/core"
)

// variant is the per-type dispatch surface of the exchange: validate
// the envelope, then apply its effect.
type variant interface {
	verify(ctx context.Context, envelope core.Activity) error
	receive(ctx context.Context, envelope core.Activity) error
}

func decodeArticle(envelope core.Activity) (core.ArticleDoc, error) {
	var article core.ArticleDoc
	if len(envelope.Object) == 0 {
		return article, core.NewErrorBadRequest("activity has no object")
	}
	if err := json.Unmarshal(envelope.Object, &article); err != nil {
		return article, core.NewErrorBadRequest("activity object is not an article")
	}
	return article, nil
}

func decodeObjectID(envelope core.Activity) (string, error) {
	var id string
	if len(envelope.Object) == 0 {
		return "", core.NewErrorBadRequest("activity has no object")
	}
	if err := json.Unmarshal(envelope.Object, &id); err != nil {
		return "", core.NewErrorBadRequest("activity object is not an identifier")
	}
	return id, nil
}
