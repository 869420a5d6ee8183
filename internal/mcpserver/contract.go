package mcpserver

// CardFormatContract describes the character card layouts the catalog
// accepts and how image links inside greetings are picked up.
const CardFormatContract = `# Character Card Format

Cards live in the cards directory as ` + "`.json`, `.yaml` or `.yml`" + ` files.

## Layouts

Nested (SillyTavern v2):

` + "```" + `json
{"name": "Alice", "data": {"name": "Alice", "first_mes": "Hi ![me](https://host/alice.png)"}}
` + "```" + `

Flat:

` + "```" + `yaml
name: Alice
first_mes:
  - "Hi ![me](https://host/alice.png)"
  - "[portrait](https://host/portrait.jpg?size=large)"
` + "```" + `

## Rules

1. ` + "`first_mes`" + ` is a single string or a list of strings. Missing means no greetings.
2. The top-level ` + "`name`" + ` wins; ` + "`data.name`" + ` is the fallback; otherwise the card is "Unknown".
3. Both ` + "`![alt](url)`" + ` and ` + "`[text](url)`" + ` links are extracted. Only targets starting with ` + "`http`" + ` are kept.
4. The stored filename is the last path segment of the URL without its query
   string, or ` + "`image.png`" + ` when that is empty.
5. Images are stored under ` + "`images/<name>/`" + `. A file whose name matches an
   existing one (case-insensitively) is skipped.
`
