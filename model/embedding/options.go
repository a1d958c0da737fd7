package embedding

import (
	"github.com/ragforge/queryengine/model"
)

type Options interface {
	model.Options
	Dimensions() *int64
}
