package vorbis

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Chapter is one entry of a CHAPTERxxx comment set.
type Chapter struct {
	Index int
	Title string
	Start time.Duration
	End   time.Duration // zero for the last chapter when the total is unknown
}

// Chapters extracts chapters from CHAPTER comments:
//
//	CHAPTERxxx=HH:MM:SS.mmm
//	CHAPTERxxxNAME=Title
//
// Where xxx is a zero-padded chapter number (e.g., 001, 002, 010, 100).
// total, if positive, ends the last chapter.
func (c *Comments) Chapters(total time.Duration) []Chapter {
	type chapterData struct {
		number    int
		timestamp string
		title     string
	}

	byNumber := make(map[int]*chapterData)
	get := func(num int) *chapterData {
		if byNumber[num] == nil {
			byNumber[num] = &chapterData{number: num}
		}
		return byNumber[num]
	}

	for _, e := range c.Entries {
		key := strings.ToUpper(strings.TrimSpace(e.Name))
		value := strings.TrimSpace(e.Value)

		if !strings.HasPrefix(key, "CHAPTER") {
			continue
		}

		if strings.HasSuffix(key, "NAME") {
			num, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(key, "CHAPTER"), "NAME"))
			if err != nil {
				continue
			}
			get(num).title = value
		} else {
			num, err := strconv.Atoi(strings.TrimPrefix(key, "CHAPTER"))
			if err != nil {
				continue
			}
			get(num).timestamp = value
		}
	}

	var list []chapterData
	for _, chap := range byNumber {
		if chap.timestamp != "" {
			list = append(list, *chap)
		}
	}
	if len(list) == 0 {
		return nil
	}

	slices.SortFunc(list, func(a, b chapterData) int {
		return cmp.Compare(a.number, b.number)
	})

	chapters := make([]Chapter, 0, len(list))
	for i, chap := range list {
		start, err := parseChapterTimestamp(chap.timestamp)
		if err != nil {
			continue
		}

		var end time.Duration
		if i < len(list)-1 {
			end, _ = parseChapterTimestamp(list[i+1].timestamp)
		} else if total > 0 {
			end = total
		}

		title := chap.title
		if title == "" {
			title = fmt.Sprintf("Chapter %d", chap.number)
		}

		chapters = append(chapters, Chapter{
			Index: len(chapters) + 1,
			Title: title,
			Start: start,
			End:   end,
		})
	}
	return chapters
}

// parseChapterTimestamp parses chapter timestamps in various formats:
//   - HH:MM:SS.mmm
//   - MM:SS.mmm
//   - SS.mmm
func parseChapterTimestamp(ts string) (time.Duration, error) {
	parts := strings.Split(ts, ":")

	var hours, minutes int
	var seconds float64
	var err error

	switch len(parts) {
	case 3:
		if hours, err = strconv.Atoi(parts[0]); err != nil {
			return 0, fmt.Errorf("invalid hours in timestamp: %s", ts)
		}
		if minutes, err = strconv.Atoi(parts[1]); err != nil {
			return 0, fmt.Errorf("invalid minutes in timestamp: %s", ts)
		}
		if seconds, err = strconv.ParseFloat(parts[2], 64); err != nil {
			return 0, fmt.Errorf("invalid seconds in timestamp: %s", ts)
		}
	case 2:
		if minutes, err = strconv.Atoi(parts[0]); err != nil {
			return 0, fmt.Errorf("invalid minutes in timestamp: %s", ts)
		}
		if seconds, err = strconv.ParseFloat(parts[1], 64); err != nil {
			return 0, fmt.Errorf("invalid seconds in timestamp: %s", ts)
		}
	case 1:
		if seconds, err = strconv.ParseFloat(parts[0], 64); err != nil {
			return 0, fmt.Errorf("invalid seconds in timestamp: %s", ts)
		}
	default:
		return 0, fmt.Errorf("invalid timestamp format: %s", ts)
	}

	if hours < 0 || minutes < 0 || minutes >= 60 || seconds < 0 || seconds >= 60 {
		return 0, fmt.Errorf("timestamp values out of range: %s", ts)
	}

	totalSeconds := float64(hours*3600+minutes*60) + seconds
	return time.Duration(totalSeconds * float64(time.Second)), nil
}
