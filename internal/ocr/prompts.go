// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"fmt"
	"sort"
)

// Prompt modes understood by the parser.
const (
	PromptLayoutAll     = "prompt_layout_all_en"
	PromptLayoutOnly    = "prompt_layout_only_en"
	PromptOCR           = "prompt_ocr"
	PromptGroundingOCR  = "prompt_grounding_ocr"
	DefaultPromptMode   = PromptLayoutAll
	layoutCategoryNames = `['Caption', 'Footnote', 'Formula', 'List-item', 'Page-footer', 'Page-header', 'Picture', 'Section-header', 'Table', 'Text', 'Title']`
)

var prompts = map[string]string{
	PromptLayoutAll: `Please output the layout information from the PDF image, including each layout element's bbox, its category, and the corresponding text content within the bbox.

1. Bbox format: [x1, y1, x2, y2]

2. Layout Categories: The possible categories are ` + layoutCategoryNames + `.

3. Text Extraction & Formatting Rules:
    - Picture: For the 'Picture' category, the text field should be omitted.
    - Formula: Format its text as LaTeX.
    - Table: Format its text as HTML.
    - All Others (Text, Title, etc.): Format their text as Markdown.

4. Constraints:
    - The output text must be the original text from the image, with no translation.
    - All layout elements must be sorted according to human reading order.

5. Final Output: The entire output must be a single JSON object.
`,
	PromptLayoutOnly: `Please output the layout information from this PDF image, including each layout's bbox and its category. The bbox should be in the format [x1, y1, x2, y2]. The layout categories for the PDF document include ` + layoutCategoryNames + `. Do not output the corresponding text. The layout result should be in JSON format.`,
	PromptOCR:       `Extract the text content from this image.`,
	PromptGroundingOCR: `Extract text from the given bounding box on the image (format: [x1, y1, x2, y2]).
Bounding Box:
`,
}

// PromptModes returns the supported prompt mode names, sorted.
func PromptModes() []string {
	modes := make([]string, 0, len(prompts))
	for m := range prompts {
		modes = append(modes, m)
	}
	sort.Strings(modes)
	return modes
}

// Prompt returns the instruction text for mode.
func Prompt(mode string) (string, error) {
	p, ok := prompts[mode]
	if !ok {
		return "", fmt.Errorf("unknown prompt mode %q (supported: %v)", mode, PromptModes())
	}
	return p, nil
}

// isLayoutMode reports whether responses for mode are JSON layout cells.
func isLayoutMode(mode string) bool {
	return mode == PromptLayoutAll || mode == PromptLayoutOnly
}
