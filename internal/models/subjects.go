package models

// Subjects is the course catalog offered at the ingestion boundary. Free-form
// subject strings outside this list are rejected only when strict validation
// is enabled; the vector store itself treats subject as an opaque keyword.
var Subjects = []string{
	"Programming Concepts",
	"Mathematical Foundation",
	"Database Management Systems",
	"Programming Paradigms",
	"Research Methodology",
	"Software Engineering",
	"Data Structures and Algorithms",
	"Core Java",
	"Python for Data Science",
	"Web Development",
	"Software Testing",
	"Field Project",
	"Software Project Management",
	"Networking Concepts",
	"Advanced Java",
	"Data Mining",
	"MERN Stack",
	"Operating Systems",
	"Machine Learning",
	"User Experience",
	"Syllabus",
}

// ValidSubject reports whether subject appears in the catalog.
func ValidSubject(subject string) bool {
	for _, s := range Subjects {
		if subject == s {
			return true
		}
	}
	return false
}
