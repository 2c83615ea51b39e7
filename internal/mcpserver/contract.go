package mcpserver

// QuerySyntaxContract describes the launcher query grammar that LLM
// consumers should follow when composing search queries.
const QuerySyntaxContract = `# SwiftFind Query Syntax

A query is free text plus optional operators. Operators and free text
mix freely; order does not matter.

## Modes

` + "```" + `
@apps @files @folders @actions @clipboard
` + "```" + `

A mode narrows results to one surface. ` + "`" + `mode:files` + "`" + ` is equivalent to
` + "`" + `@files` + "`" + `. Singular forms (` + "`" + `@app` + "`" + `, ` + "`" + `@file` + "`" + `) are accepted.

## Command mode

A leading ` + "`" + `>` + "`" + ` switches to command mode: only actions are returned
(built-in actions, plugin actions, uninstall entries, and a web-search
action for the remaining text).

## Operators

| Operator | Effect |
|----------|--------|
| ` + "`" + `kind:app` + "`" + ` | Filter by item kind (app, file, folder, action, clipboard) |
| ` + "`" + `ext:pdf` + "`" + ` | Filter files by extension (` + "`" + `extension:` + "`" + ` also works) |
| ` + "`" + `modified:today` + "`" + ` | Modified within a window: today, week, month |
| ` + "`" + `created:week` + "`" + ` | Created within a window: today, week, month |
| ` + "`" + `-term` + "`" + ` or ` + "`" + `NOT term` + "`" + ` | Exclude items whose title contains the term |
| ` + "`" + `a OR b` + "`" + ` | Match either side; ` + "`" + `AND` + "`" + ` is implicit between terms |
| ` + "`" + `"quoted span"` + "`" + ` | Treat a phrase with spaces as one term |

## Examples

` + "```" + `
report ext:xlsx modified:week
@apps visual studio
budget OR forecast -draft
>uninstall discord
` + "```" + `

Matching is case-insensitive and accent-insensitive.
`
