package utils

import (
	"fmt"
	"regexp"
	"strings"

	"visual-product-builder/models"
)

var elementExtRegex = regexp.MustCompile(`(?i)\.(png|svg)$`)

// ParseElementFileName parses an element image filename following the pattern:
// NAME_CATEGORY_COLOR.png (or .svg)
// Example: A_letter_blue.png, 7_number_gold.svg, Star_shape_red.png
func ParseElementFileName(filename string) (*models.ElementImport, error) {
	ext := elementExtRegex.FindString(filename)
	if ext == "" {
		return nil, fmt.Errorf("unsupported extension in filename: %s", filename)
	}
	nameWithoutExt := elementExtRegex.ReplaceAllString(filename, "")

	parts := strings.Split(nameWithoutExt, "_")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid filename format: expected NAME_CATEGORY_COLOR, got %d parts", len(parts))
	}

	name := strings.TrimSpace(parts[0])
	if name == "" {
		return nil, fmt.Errorf("empty element name in filename: %s", filename)
	}

	category := strings.ToLower(strings.TrimSpace(parts[1]))
	if !models.ValidCategories[category] {
		return nil, fmt.Errorf("invalid category: expected letter, number or shape, got %s", parts[1])
	}

	color := strings.ToLower(strings.TrimSpace(parts[2]))
	if color == "" {
		return nil, fmt.Errorf("empty color in filename: %s", filename)
	}

	return &models.ElementImport{
		Name:       name,
		Category:   category,
		ColorLabel: color,
		IsSVG:      strings.EqualFold(ext, ".svg"),
	}, nil
}
