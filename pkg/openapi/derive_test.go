package openapi

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const quizDocument = `
openapi: 3.0.3
info:
  title: Quiz API
  version: "1.0"
paths:
  /quiz/question:
    get:
      operationId: listQuestions
      responses:
        "200":
          description: ok
    post:
      operationId: createQuestion
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [question]
              properties:
                question:
                  type: string
                answer_description:
                  type: string
                weight:
                  type: integer
                  default: 1
                published:
                  type: boolean
      responses:
        "200":
          description: ok
  /quiz/question/{question_id}:
    get:
      operationId: getQuestion
      responses:
        "200":
          description: ok
    put:
      operationId: updateQuestion
      responses:
        "200":
          description: ok
    delete:
      operationId: deleteQuestion
      responses:
        "200":
          description: ok
  /quiz/statistics:
    get:
      operationId: quizStatistics
      responses:
        "200":
          description: ok
`

func TestDeriveDescriptors(t *testing.T) {
	descriptors, err := DeriveDescriptors(context.Background(), []byte(quizDocument))
	if err != nil {
		t.Fatalf("derive: %v", err)
	}

	if len(descriptors) != 1 {
		t.Fatalf("want one resource, got %d", len(descriptors))
	}
	desc, ok := descriptors["question"]
	if !ok {
		t.Fatal("question resource missing")
	}

	if desc.Root != "/quiz/question" {
		t.Fatalf("root: %q", desc.Root)
	}
	wantSchema := map[string]any{
		"question":           "",
		"answer_description": "",
		"weight":             float64(1),
		"published":          false,
	}
	if diff := cmp.Diff(wantSchema, desc.Schema); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"question"}, desc.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
	if err := desc.Validate(); err != nil {
		t.Fatalf("derived descriptor invalid: %v", err)
	}
}

func TestDeriveDescriptorByName(t *testing.T) {
	if _, err := DeriveDescriptor(context.Background(), []byte(quizDocument), "question"); err != nil {
		t.Fatalf("derive by name: %v", err)
	}
	if _, err := DeriveDescriptor(context.Background(), []byte(quizDocument), "member"); err == nil {
		t.Fatal("unknown resource must error")
	}
}

func TestDeriveRejectsEmptyDocument(t *testing.T) {
	if _, err := DeriveDescriptors(context.Background(), nil); err == nil {
		t.Fatal("empty payload must error")
	}
}

func TestParseDescriptor(t *testing.T) {
	raw := []byte(`
name: quiz_question
root: /quiz/question
schema:
  question: ""
  weight: 1
required: [question]
delete_confirm: "Remove this question? Previous answers stay counted."
`)
	desc, err := ParseDescriptor(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if desc.Name != "quiz_question" || desc.Root != "/quiz/question" {
		t.Fatalf("descriptor: %+v", desc)
	}
	if desc.DeleteConfirm == "" {
		t.Fatal("delete confirm lost")
	}

	if _, err := ParseDescriptor([]byte("root: /quiz")); err == nil {
		t.Fatal("descriptor without schema must be rejected")
	}
}
