package newsroom

import (
	"regexp"
	"strings"
)

// PriorityTopicTitle is the subject that gets pinned to the front of every
// discovery cycle so it is processed before quota or time limits truncate a
// run.
const PriorityTopicTitle = "Latest Entrance Exam and Job Announcements"

var newsLikeRe = regexp.MustCompile(`(?i)exam|result|job|hiring|recruitment|vacanc|announce|notification|news|breaking`)

// NewsLike reports whether s reads like a news, result, or job style subject.
// These subjects get a source URL requested at generation time and qualify
// for auto-publication by title.
func NewsLike(s string) bool {
	return newsLikeRe.MatchString(s)
}

var examJobRe = regexp.MustCompile(`(?i)exam|job|result|hiring|recruitment|vacanc|admit card`)

// ExamJobLike reports whether s is entrance-exam or job related. These take
// precedence over every other classification.
func ExamJobLike(s string) bool {
	return examJobRe.MatchString(s)
}

// PriorityTopic reports whether topic denotes the pinned entrance-exam/jobs
// subject.
func PriorityTopic(topic string) bool {
	return strings.EqualFold(strings.TrimSpace(topic), PriorityTopicTitle) ||
		(ExamJobLike(topic) && strings.Contains(strings.ToLower(topic), "announcement"))
}
