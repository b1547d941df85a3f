package generator

import "trivia-service/internal/domain"

// FallbackQuestions returns the static question bank used when content
// gathering or generation fails entirely. Kept deliberately small; the
// bank only has to keep the quiz playable until generation recovers.
func FallbackQuestions() []domain.Question {
	return []domain.Question{
		{
			Prompt: "Which protocol underpins the World Wide Web?",
			Options: []string{
				"FTP",
				"HTTP",
				"SMTP",
				"SSH",
			},
			CorrectAnswer: 1,
		},
		{
			Prompt: "What does the 'L' in an LLM stand for?",
			Options: []string{
				"Large",
				"Linear",
				"Logical",
				"Layered",
			},
			CorrectAnswer: 0,
		},
		{
			Prompt: "Which data structure gives O(1) average lookup by key?",
			Options: []string{
				"Linked list",
				"Binary search tree",
				"Hash table",
				"Priority queue",
			},
			CorrectAnswer: 2,
		},
		{
			Prompt: "RSS feeds are most commonly encoded in which format?",
			Options: []string{
				"YAML",
				"Protocol Buffers",
				"CSV",
				"XML",
			},
			CorrectAnswer: 3,
		},
		{
			Prompt: "Which HTTP status code means 'Not Found'?",
			Options: []string{
				"301",
				"404",
				"500",
				"204",
			},
			CorrectAnswer: 1,
		},
		{
			Prompt: "What does a CDN primarily optimize?",
			Options: []string{
				"Database writes",
				"Content delivery latency",
				"Password hashing",
				"Compiler output",
			},
			CorrectAnswer: 1,
		},
		{
			Prompt: "Which company developed the Go programming language?",
			Options: []string{
				"Microsoft",
				"Mozilla",
				"Google",
				"Apple",
			},
			CorrectAnswer: 2,
		},
		{
			Prompt: "In computing, what does 'TTL' commonly stand for?",
			Options: []string{
				"Total Transfer Load",
				"Time To Live",
				"Transaction Table Lock",
				"Typed Template Literal",
			},
			CorrectAnswer: 1,
		},
	}
}
