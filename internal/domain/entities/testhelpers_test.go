package entities

import "fmt"

func makeQuestion(id string, domain DomainID, correct string) Question {
	return Question{
		ID:       id,
		DomainID: domain,
		Text:     "What should the project manager do first?",
		Options: []Option{
			{ID: "A", Label: "Escalate"},
			{ID: "B", Label: "Analyze"},
			{ID: "C", Label: "Ignore"},
			{ID: "D", Label: "Replan"},
		},
		CorrectOptionID: correct,
	}
}

// makeExamQuestions builds n questions per domain in blueprint order.
func makeExamQuestions(people, process, business int) []Question {
	var out []Question
	add := func(domain DomainID, n int) {
		for i := range n {
			out = append(out, makeQuestion(fmt.Sprintf("%s-%d", domain, i), domain, "B"))
		}
	}
	add(DomainPeople, people)
	add(DomainProcess, process)
	add(DomainBusiness, business)
	return out
}
