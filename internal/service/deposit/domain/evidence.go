package domain

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// EvidenceKind 决定管理后台如何渲染付款凭证
type EvidenceKind string

const (
	EvidenceImage EvidenceKind = "image"
	EvidencePDF   EvidenceKind = "pdf"
	EvidenceNone  EvidenceKind = "none"
)

var imageMarkers = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", "image"}

// EvidenceKindOf 按 URL 子串判断凭证类型
func EvidenceKindOf(url string) EvidenceKind {
	lower := strings.ToLower(url)
	switch {
	case lower == "":
		return EvidenceNone
	case strings.Contains(lower, ".pdf"):
		return EvidencePDF
	}
	for _, m := range imageMarkers {
		if strings.Contains(lower, m) {
			return EvidenceImage
		}
	}
	return EvidenceNone
}

// ProofPath 生成对象存储路径 {userId}/proof-of-payment_{timestamp}.{ext}
func ProofPath(userID string, at time.Time, filename string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(filename)), ".")
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("%s/proof-of-payment_%d.%s", userID, at.UnixMilli(), ext)
}
