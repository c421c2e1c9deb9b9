package briefs

// Prompt templates for brief construction. Each asks for a strict JSON
// shape; internal/extract tolerates fenced or prose-wrapped replies.

const differentiatorsPromptTemplate = `You are planning an SEO blog post.

Topic: %s
Target keyword: %s
Audience: %s
Content angle: %s

List 4 concrete ways this post can differ from typical coverage of the
topic. Avoid generic advice; tie each differentiator to the angle.

Respond with JSON only:
{"differentiators": ["...", "...", "...", "..."]}`

const dataPointsPromptTemplate = `You are researching an SEO blog post.

Topic: %s
Location: %s
Target keyword: %s

Provide 5 specific, checkable facts about the topic. Each fact needs a
named source. Mark "verified" true only if the source is an official or
primary one.

Respond with JSON only:
{"dataPoints": [{"fact": "...", "source": "...", "verified": true}]}`

const insightPromptTemplate = `You are planning an SEO blog post.

Topic: %s
Content angle: %s
Differentiators: %s

State one original insight about the topic that typical coverage misses.
One or two sentences, concrete, no hedging.

Respond with JSON only:
{"insight": "..."}`

const draftSystemPrompt = `You are a senior content writer producing long-form
SEO blog posts about city neighborhoods. Write natural, specific prose.
Never pad with filler phrases. Always respond with the exact JSON shape
requested and nothing else.`

const draftPromptTemplate = `Write a complete blog post.

Topic: %s
Target keyword: %s (use it verbatim at least once)
Secondary keywords: %s
Search intent: %s
Audience: %s
Content angle: %s
Structural template: %s
Target length: %d words

The post must work in all of these differentiators:
%s

The post must state each of these facts, with its source, early in a
relevant section:
%s

The post must build toward this insight:
%s

Use markdown with at least three "##" sections, "###" subsections where
useful, and bulleted lists. Include at least one worked example and a
step-by-step passage.

Respond with JSON only:
{
  "title": "...",
  "metaDescription": "...",
  "slug": "...",
  "content": "... full markdown body ...",
  "faqItems": [{"question": "...", "answer": "..."}]
}`
