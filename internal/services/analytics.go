package services

import (
  "sort"
  "strconv"
  "strings"
  "time"
  "github.com/koclukapp/kocluk-backend/internal/types"
)

const (
  AnalyticsWindow24h = "24h"
  AnalyticsWindow7d  = "7d"
  AnalyticsWindow30d = "30d"
  AnalyticsWindowAll = "all"
)

// SubjectTopicAggregate sums question-solving results per (subject, topic).
// Net is the domain's scoring convention: each wrong answer offsets a third
// of a point, empty answers are neutral.
type SubjectTopicAggregate struct {
  Subject string  `json:"subject"`
  Topic   string  `json:"topic"`
  Correct int     `json:"correct"`
  Wrong   int     `json:"wrong"`
  Empty   int     `json:"empty"`
  Total   int     `json:"total"`
  Net     float64 `json:"net"`
}

type WeeklyReading struct {
  WeekStart string `json:"week_start"`
  Pages     int    `json:"pages"`
}

func NetScore(correct, wrong int) float64 {
  return float64(correct) - float64(wrong)/3.0
}

// FilterTasksByWindow keeps tasks created within the trailing window
// relative to now. Unknown window values fall back to all-time.
func FilterTasksByWindow(tasks []*types.Task, window string, now time.Time) []*types.Task {
  var dur time.Duration
  switch window {
  case AnalyticsWindow24h:
    dur = 24 * time.Hour
  case AnalyticsWindow7d:
    dur = 7 * 24 * time.Hour
  case AnalyticsWindow30d:
    dur = 30 * 24 * time.Hour
  default:
    return tasks
  }
  cutoff := now.Add(-dur)
  filtered := make([]*types.Task, 0, len(tasks))
  for _, t := range tasks {
    if !t.CreatedAt.Before(cutoff) {
      filtered = append(filtered, t)
    }
  }
  return filtered
}

// AggregateQuestionResults folds scored soru_cozumu tasks into per
// (subject, topic) sums. Tasks without persisted counts (not yet reviewed,
// or rejected) contribute nothing.
func AggregateQuestionResults(tasks []*types.Task) []SubjectTopicAggregate {
  type key struct{ subject, topic string }
  byKey := map[key]*SubjectTopicAggregate{}
  for _, t := range tasks {
    if t.Type != types.TaskTypeQuestions {
      continue
    }
    if t.CorrectCount == nil || t.WrongCount == nil || t.EmptyCount == nil {
      continue
    }
    k := key{subject: t.Subject, topic: t.Topic}
    agg, ok := byKey[k]
    if !ok {
      agg = &SubjectTopicAggregate{Subject: t.Subject, Topic: t.Topic}
      byKey[k] = agg
    }
    agg.Correct += *t.CorrectCount
    agg.Wrong += *t.WrongCount
    agg.Empty += *t.EmptyCount
    agg.Total += *t.CorrectCount + *t.WrongCount + *t.EmptyCount
  }
  results := make([]SubjectTopicAggregate, 0, len(byKey))
  for _, agg := range byKey {
    agg.Net = NetScore(agg.Correct, agg.Wrong)
    results = append(results, *agg)
  }
  sort.Slice(results, func(i, j int) bool {
    if results[i].Subject != results[j].Subject {
      return results[i].Subject < results[j].Subject
    }
    return results[i].Topic < results[j].Topic
  })
  return results
}

// WeeklyReadingTotals buckets kitap_okuma tasks by ISO week (keyed by the
// Monday the week starts on) and sums the page count parsed from the topic
// field. A non-numeric topic contributes zero pages.
func WeeklyReadingTotals(tasks []*types.Task) []WeeklyReading {
  byWeek := map[string]int{}
  for _, t := range tasks {
    if t.Type != types.TaskTypeReading {
      continue
    }
    week := WeekStart(t.CreatedAt).Format("2006-01-02")
    byWeek[week] += ParsePageCount(t.Topic)
  }
  results := make([]WeeklyReading, 0, len(byWeek))
  for week, pages := range byWeek {
    results = append(results, WeeklyReading{WeekStart: week, Pages: pages})
  }
  sort.Slice(results, func(i, j int) bool {
    return results[i].WeekStart < results[j].WeekStart
  })
  return results
}

// WeekStart truncates to the Monday 00:00 of the ISO week containing t.
func WeekStart(t time.Time) time.Time {
  offset := (int(t.Weekday()) + 6) % 7
  day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
  return day.AddDate(0, 0, -offset)
}

func ParsePageCount(topic string) int {
  n, err := strconv.Atoi(strings.TrimSpace(topic))
  if err != nil || n < 0 {
    return 0
  }
  return n
}

// GroupTasksBySubject preserves each group's task order as given.
func GroupTasksBySubject(tasks []*types.Task) map[string][]*types.Task {
  grouped := map[string][]*types.Task{}
  for _, t := range tasks {
    grouped[t.Subject] = append(grouped[t.Subject], t)
  }
  return grouped
}
