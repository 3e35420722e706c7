package db

import (
	"slices"
	"strings"

	"github.com/deemkeen/tusk/domain"
	"github.com/deemkeen/tusk/util"
)

// IndexPostHashtags extracts the hashtags of content and associates them with
// the post. It returns the extracted tags.
func (db *DB) IndexPostHashtags(postId, content string) ([]string, error) {
	tags := util.ExtractHashtags(content)
	err := db.wrapTransaction(func() error {
		return db.indexHashtags(postId, tags)
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// IndexManualHashtags normalizes user supplied tags and associates the valid
// ones with the post. Invalid tags are dropped silently.
func (db *DB) IndexManualHashtags(postId string, rawTags []string) ([]string, error) {
	tags := util.NormalizeTags(rawTags)
	err := db.wrapTransaction(func() error {
		return db.indexHashtags(postId, tags)
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// indexHashtags upserts tags and the post associations. The caller holds the
// write lock.
func (db *DB) indexHashtags(postId string, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	now := db.timestamp()

	err := db.store.Update(hashtagsTable, func(rows []Row) ([]Row, error) {
		for _, tag := range tags {
			found := false
			for _, r := range rows {
				if r["hashtag"] == tag {
					r["last_seen_at"] = now
					found = true
					break
				}
			}
			if !found {
				rows = append(rows, Row{"hashtag": tag, "first_seen_at": now, "last_seen_at": now})
			}
		}
		return rows, nil
	})
	if err != nil {
		return err
	}

	return db.store.Update(postHashtagsTable, func(rows []Row) ([]Row, error) {
		existing := make(map[string]struct{}, len(rows))
		for _, r := range rows {
			if r["post_id"] == postId {
				existing[r["hashtag"]] = struct{}{}
			}
		}
		for _, tag := range tags {
			if _, ok := existing[tag]; ok {
				continue
			}
			existing[tag] = struct{}{}
			rows = append(rows, Row{"post_id": postId, "hashtag": tag})
		}
		return rows, nil
	})
}

// ReadPostIdsByHashtag returns the ids of posts indexed under tag. The lookup
// ignores case and a leading '#'.
func (db *DB) ReadPostIdsByHashtag(tag string) ([]string, error) {
	tag = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
	rows, err := db.store.Read(postHashtagsTable)
	if err != nil {
		return nil, err
	}
	ids := []string{}
	for _, r := range rows {
		if r["hashtag"] == tag {
			ids = append(ids, r["post_id"])
		}
	}
	return ids, nil
}

func (db *DB) ReadHashtagsByPostId(postId string) ([]string, error) {
	rows, err := db.store.Read(postHashtagsTable)
	if err != nil {
		return nil, err
	}
	tags := []string{}
	for _, r := range rows {
		if r["post_id"] == postId {
			tags = append(tags, r["hashtag"])
		}
	}
	slices.Sort(tags)
	return tags, nil
}

// ReadPostHashtags maps every post id to its sorted tags.
func (db *DB) ReadPostHashtags() (map[string][]string, error) {
	rows, err := db.store.Read(postHashtagsTable)
	if err != nil {
		return nil, err
	}
	byPost := make(map[string][]string)
	for _, r := range rows {
		byPost[r["post_id"]] = append(byPost[r["post_id"]], r["hashtag"])
	}
	for _, tags := range byPost {
		slices.Sort(tags)
	}
	return byPost, nil
}

func (db *DB) ReadHashtag(tag string) (*domain.Hashtag, error) {
	tag = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
	rows, err := db.store.Read(hashtagsTable)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if r["hashtag"] == tag {
			h := rowToHashtag(r)
			return &h, nil
		}
	}
	return nil, nil
}

// ReadTrendingHashtags returns the most recently used tags first.
func (db *DB) ReadTrendingHashtags(limit int) ([]domain.Hashtag, error) {
	rows, err := db.store.Read(hashtagsTable)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(rows, func(a, b Row) int {
		if c := strings.Compare(b["last_seen_at"], a["last_seen_at"]); c != 0 {
			return c
		}
		return strings.Compare(a["hashtag"], b["hashtag"])
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	tags := make([]domain.Hashtag, 0, len(rows))
	for _, r := range rows {
		tags = append(tags, rowToHashtag(r))
	}
	return tags, nil
}

func rowToHashtag(r Row) domain.Hashtag {
	return domain.Hashtag{
		Tag:         r["hashtag"],
		FirstSeenAt: util.ParseTimestamp(r["first_seen_at"]),
		LastSeenAt:  util.ParseTimestamp(r["last_seen_at"]),
	}
}
