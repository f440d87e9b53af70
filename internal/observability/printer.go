// Package observability provides formatted progress output for the CLI.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/yuxuan/evalagent/internal/client"
)

// courseCategories is the display order for known course categories; courses
// with any other category land in the trailing bucket.
var courseCategories = []string{"理论课", "实验/实践课", "外语课", "体育课", "科研课堂"}

// otherCategory collects courses whose category is unknown.
const otherCategory = "其他"

// Printer handles formatted output for run progress and course listings.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// Stepf prints one progress line.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) Stepf(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// PrintRunHeader announces a run and the task it evaluates.
func (p *Printer) PrintRunHeader(runID, taskName string) {
	p.Stepf("run %s: evaluating task %q", runID, taskName)
}

// PrintSubmission reports one submitted course.
func (p *Printer) PrintSubmission(course client.Course, strategy string, score int) {
	p.Stepf("submitted %s — %s (strategy %s, score %d)", course.CourseName, course.TeacherName, strategy, score)
}

// PrintCourseCatalog prints every course and its teachers grouped by course
// category.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintCourseCatalog(courses []client.Course) {
	grouped := make(map[string]map[string]map[string]bool)
	for _, c := range courses {
		category := c.Category
		if !knownCategory(category) {
			category = otherCategory
		}
		if grouped[category] == nil {
			grouped[category] = make(map[string]map[string]bool)
		}
		name := c.CourseName
		if name == "" {
			name = "(unnamed course)"
		}
		if grouped[category][name] == nil {
			grouped[category][name] = make(map[string]bool)
		}
		teacher := c.TeacherName
		if teacher == "" {
			teacher = "(unknown teacher)"
		}
		grouped[category][name][teacher] = true
	}

	fmt.Fprintln(p.out, "courses awaiting evaluation:")
	for _, category := range append(append([]string{}, courseCategories...), otherCategory) {
		byCourse, ok := grouped[category]
		if !ok {
			continue
		}
		fmt.Fprintf(p.out, "\n%s\n", category)
		names := make([]string, 0, len(byCourse))
		for name := range byCourse {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			teachers := make([]string, 0, len(byCourse[name]))
			for teacher := range byCourse[name] {
				teachers = append(teachers, teacher)
			}
			sort.Strings(teachers)
			fmt.Fprintf(p.out, "  %s — %s\n", name, strings.Join(teachers, ", "))
		}
	}
}

func knownCategory(category string) bool {
	for _, known := range courseCategories {
		if category == known {
			return true
		}
	}
	return false
}
