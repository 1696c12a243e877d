package mcpserver

// ArticleFormat describes the markdown subset rixa renders, for LLM
// consumers that read or draft articles.
const ArticleFormat = `# Rixa Article Format

Articles are UTF-8 Markdown files under the content directory. The first
folder of the path is the article's category; files at the top level are
"uncategorized". The file name (without ` + "`.md`" + `) becomes the display title,
with dashes turned into spaces and each word capitalised.

## Frontmatter

Optional YAML between ` + "`---`" + ` fences at the very top of the file:

` + "```" + `yaml
---
title: Docker Compose Tips      # shown instead of the file name in lists
subtitle: One line summary      # used as the excerpt
readTime: 6 min                 # estimated from the body when absent
date: 2024-03-01
image: /images/compose.png      # cover image, served from images/
tags: [docker, devops]          # a list or a comma separated string
---
` + "```" + `

## Rendered blocks

Every line maps to exactly one block; nothing fails to render.

- ` + "`# `, `## `, `### `" + ` headers (deeper levels render as paragraphs)
- ` + "`- item`" + ` and ` + "`* item`" + ` bullet lists; two leading spaces indent an item
- ` + "`1. item`" + ` ordered lists keep their original numbers
- ` + "`- [ ] todo`" + ` and ` + "`- [x] done`" + ` checkboxes
- ` + "`| a | b |`" + ` table rows; separator rows are dropped
- ` + "`---`" + ` horizontal rules
- fenced code with an optional language, highlighted per theme
- a line wrapped in single ` + "`*`" + ` renders as an italic note
- everything else is a paragraph with ` + "`**bold**`, `` `code` ``" + ` and ` + "`[links](url)`" + `

Other markdown (emphasis with underscores, images inline, nested quotes,
HTML) is shown as plain paragraph text.
`
