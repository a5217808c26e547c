package dto

import (
	commonDto "github.com/workbridge-app/workbridge/pkg/dto"
)

type ClientDashboard struct {
	Role      string                  `json:"role"`
	TotalJobs int                     `json:"total_jobs"`
	OpenJobs  int                     `json:"open_jobs"`
	Jobs      []commonDto.JobResponse `json:"jobs"`
}

type FreelancerDashboard struct {
	Role              string                       `json:"role"`
	TotalProposals    int                          `json:"total_proposals"`
	AcceptedProposals int                          `json:"accepted_proposals"`
	Proposals         []commonDto.ProposalResponse `json:"proposals"`
}
