package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

const (
	feedFirstPageKey     = "feed:firstpage"
	linkPreviewKeyPrefix = "linkpreview:%s"
)

// FeedTTL keeps the hot first page of the global feed fresh enough while
// absorbing most of the read traffic.
const FeedTTL = 30 * time.Second

// LinkPreviewTTL bounds how long a fetched preview is reused. Target pages
// change rarely; previews are cosmetic, so staleness is acceptable.
const LinkPreviewTTL = 6 * time.Hour

// FeedFirstPageKey is the cache key for the uncursored global feed page.
func FeedFirstPageKey() string {
	return feedFirstPageKey
}

// LinkPreviewKey derives a fixed-size cache key from the target URL.
func LinkPreviewKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return fmt.Sprintf(linkPreviewKeyPrefix, hex.EncodeToString(sum[:]))
}

// Invalidate removes a key, ignoring errors; cache entries are best-effort.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}
