package utils

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PaginationParams struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"limit" form:"limit"`
}

func GetPaginationParams(c *gin.Context) *PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultPageSize)))
	return NewPaginationParams(page, pageSize)
}

func NewPaginationParams(page, pageSize int) *PaginationParams {
	if page < 1 {
		page = 1
	}

	if pageSize < MinPageSize {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	return &PaginationParams{
		Page:     page,
		PageSize: pageSize,
	}
}

func (p *PaginationParams) GetSkip() int {
	return (p.Page - 1) * p.PageSize
}

func (p *PaginationParams) GetLimit() int {
	return p.PageSize
}

// GetFindOptions returns skip/limit options sorted newest-created first.
func (p *PaginationParams) GetFindOptions() *options.FindOptions {
	return options.Find().
		SetSkip(int64(p.GetSkip())).
		SetLimit(int64(p.GetLimit())).
		SetSort(bson.D{{Key: "created_at", Value: -1}})
}

func (p *PaginationParams) TotalPages(total int64) int {
	return int(math.Ceil(float64(total) / float64(p.PageSize)))
}

func (p *PaginationParams) ListMeta(count int, total int64) *ListMeta {
	pages := p.TotalPages(total)
	page := p.Page
	return &ListMeta{
		Count:       count,
		Total:       &total,
		Pages:       &pages,
		CurrentPage: &page,
	}
}
