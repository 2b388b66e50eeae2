package task

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/config"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/logger"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/logic"
)

// ProposalExecuteJob 到期提案执行任务
// 提案任何人均可执行，定时任务兜底，避免无人调用时里程碑长期停在投票状态
type ProposalExecuteJob struct {
	config     *config.Config
	governance *logic.GovernanceLogic
}

// NewProposalExecuteJob 创建到期提案执行任务
func NewProposalExecuteJob(cfg *config.Config, governance *logic.GovernanceLogic) *ProposalExecuteJob {
	return &ProposalExecuteJob{
		config:     cfg,
		governance: governance,
	}
}

// GetName 获取任务名称
func (j *ProposalExecuteJob) GetName() string {
	return "proposal_execute_worker"
}

// GetSchedule 获取调度配置
func (j *ProposalExecuteJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *ProposalExecuteJob) Execute() {
	logger.Info("Starting proposal execute task")

	executed, err := j.governance.ExecuteDueProposals()
	if err != nil {
		logger.Error("Failed to execute due proposals: %v", err)
		return
	}

	logger.Info("Proposal execute task completed. Executed %d proposals", executed)
}
