package image

import (
	"context"
	"fmt"
)

// StaticGenerator fabricates deterministic placeholder assets so the full
// pipeline can run without a remote provider.
type StaticGenerator struct{}

func NewStaticGenerator() *StaticGenerator {
	return &StaticGenerator{}
}

func (s *StaticGenerator) Generate(ctx context.Context, req GenerateRequest) ([]Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	width, height := Dimensions(req.AspectRatio)
	assets := make([]Asset, quantity)
	for i := range assets {
		assets[i] = Asset{
			URL:    fmt.Sprintf("https://cdn.example.com/studio/%s/%d.png", req.RequestID, i+1),
			Format: "image/png",
			Width:  width,
			Height: height,
		}
	}
	return assets, nil
}

var _ Generator = (*StaticGenerator)(nil)
