package generate

import (
	"fmt"
	"strings"
)

// fallbackArticle builds the deterministic templated article used when the
// backend is unavailable or disallowed. It satisfies the same structural
// contract as a generated one: a title containing the topic, a body with
// headings, and a derived tag list, so nothing downstream special-cases it.
func fallbackArticle(topic string) (title, body string, tags []string) {
	title = fmt.Sprintf("%s: What You Need to Know", topic)

	var b strings.Builder
	fmt.Fprintf(&b, "## Overview\n\n")
	fmt.Fprintf(&b, "%s has been drawing growing attention lately, and for good reason. ", topic)
	fmt.Fprintf(&b, "This article walks through the essentials so you can get up to speed quickly.\n\n")
	fmt.Fprintf(&b, "## Key Points\n\n")
	fmt.Fprintf(&b, "- Why %s matters right now\n", topic)
	fmt.Fprintf(&b, "- The main developments to watch\n")
	fmt.Fprintf(&b, "- Practical takeaways you can act on today\n\n")
	fmt.Fprintf(&b, "## A Closer Look\n\n")
	fmt.Fprintf(&b, "There is more to %s than the headlines suggest. ", topic)
	fmt.Fprintf(&b, "Understanding the background helps put the current conversation in context, ")
	fmt.Fprintf(&b, "and makes it easier to separate meaningful developments from noise.\n\n")
	fmt.Fprintf(&b, "## What Comes Next\n\n")
	fmt.Fprintf(&b, "Keep an eye on official announcements and primary sources for updates on %s. ", topic)
	fmt.Fprintf(&b, "We will revisit this subject as the story develops.\n")
	body = b.String()

	return title, body, heuristicTags(topic)
}
