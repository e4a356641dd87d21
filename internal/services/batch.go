package services

import (
	"fmt"

	appErr "github.com/stackhook/engine/pkg/errors"
)

type BatchMode string

const (
	BatchByUUID BatchMode = "uuid"
	BatchByTag  BatchMode = "tag"
)

const noResourcesFound = "No resources found."

// Outcome is the result of dispatching one resolved resource. Dispatched is
// the item-level flag; the request-level flag lives on the envelope.
type Outcome struct {
	ResourceUUID   string `json:"resource_uuid"`
	Dispatched     bool   `json:"dispatched"`
	Message        string `json:"message"`
	DeploymentUUID string `json:"deployment_uuid,omitempty"`
}

// BatchResult accumulates outcomes in dispatch order.
type BatchResult struct {
	Mode     BatchMode
	Messages []string
	Outcomes []Outcome
}

func newBatch(mode BatchMode) *BatchResult {
	return &BatchResult{Mode: mode, Messages: []string{}, Outcomes: []Outcome{}}
}

// note adds a message that has no outcome, such as an empty tag.
func (b *BatchResult) note(msg string) {
	b.Messages = append(b.Messages, msg)
}

func (b *BatchResult) record(resourceUUID string, res DispatchResult, err error) {
	o := Outcome{ResourceUUID: resourceUUID}
	if err != nil {
		o.Message = publicMessage(err)
	} else {
		o.Dispatched = true
		o.Message = res.Message
		o.DeploymentUUID = res.DeploymentUUID
	}
	b.Outcomes = append(b.Outcomes, o)
	b.Messages = append(b.Messages, o.Message)
}

// Success is the request-level flag: at least one outcome exists, whether or
// not every item was dispatched.
func (b *BatchResult) Success() bool { return len(b.Outcomes) > 0 }

// Err returns the request-level failure for a batch without outcomes.
func (b *BatchResult) Err() error {
	if b.Success() {
		return nil
	}
	return appErr.New(appErr.CodeNotFound, noResourcesFound)
}

type UUIDBatchData struct {
	Deployments []Outcome `json:"deployments"`
}

type TagBatchData struct {
	Message []string  `json:"message"`
	Details []Outcome `json:"details"`
}

// Data is the response payload for the batch's addressing mode.
func (b *BatchResult) Data() any {
	if b.Mode == BatchByTag {
		return TagBatchData{Message: b.Messages, Details: b.Outcomes}
	}
	return UUIDBatchData{Deployments: b.Outcomes}
}

func emptyTagMessage(tag string) string {
	return fmt.Sprintf("No resources found for tag %s.", tag)
}

func unresolvedTagMessage(tag string) string {
	return fmt.Sprintf("Tag %s could not be resolved.", tag)
}

func unresolvedResource(uuid string) error {
	return appErr.Newf(appErr.CodeInternal, "Resource %s could not be resolved.", uuid)
}

// publicMessage returns the caller-facing text of err without its cause.
func publicMessage(err error) string {
	if ae, ok := appErr.As(err); ok && ae.Message != "" {
		return ae.Message
	}
	return "Dispatch failed."
}
