package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Workflow definitions
			CREATE TABLE workflows (
				id BIGSERIAL PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				trigger INTEGER NOT NULL,
				is_active BOOLEAN NOT NULL DEFAULT false,
				organization_id BIGINT NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_workflows_organization_id ON workflows(organization_id);
			CREATE INDEX idx_workflows_active_trigger ON workflows(organization_id, trigger) WHERE is_active;

			CREATE TABLE workflow_actions (
				id BIGSERIAL PRIMARY KEY,
				workflow_id BIGINT NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
				action_type INTEGER NOT NULL,
				position INTEGER NOT NULL DEFAULT 0,
				condition_json TEXT NOT NULL DEFAULT '',
				parameters_json TEXT NOT NULL DEFAULT ''
			);

			CREATE INDEX idx_workflow_actions_workflow_id ON workflow_actions(workflow_id, position);
		`,
		2: `
			-- CRM records touched by workflow actions
			CREATE TABLE contacts (
				id BIGSERIAL PRIMARY KEY,
				organization_id BIGINT NOT NULL,
				first_name VARCHAR(255) NOT NULL DEFAULT '',
				last_name VARCHAR(255) NOT NULL DEFAULT '',
				email VARCHAR(255) NOT NULL DEFAULT '',
				owner_id VARCHAR(255) NOT NULL DEFAULT '',
				lead_status INTEGER NOT NULL DEFAULT 0,
				life_cycle_stage_id INTEGER NOT NULL DEFAULT 0,
				company_id BIGINT,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_contacts_organization_id ON contacts(organization_id);

			CREATE TABLE tasks (
				id BIGSERIAL PRIMARY KEY,
				organization_id BIGINT NOT NULL,
				title VARCHAR(500) NOT NULL,
				task_type VARCHAR(100) NOT NULL DEFAULT '',
				due_date TIMESTAMP WITH TIME ZONE,
				status_id INTEGER NOT NULL DEFAULT 0,
				priority_id INTEGER NOT NULL DEFAULT 0,
				assignee_id VARCHAR(255) NOT NULL DEFAULT '',
				contact_id BIGINT REFERENCES contacts(id) ON DELETE SET NULL,
				company_id BIGINT,
				completed_at TIMESTAMP WITH TIME ZONE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_tasks_contact_id ON tasks(contact_id);

			CREATE TABLE activities (
				id BIGSERIAL PRIMARY KEY,
				organization_id BIGINT NOT NULL,
				type VARCHAR(50) NOT NULL,
				summary TEXT NOT NULL DEFAULT '',
				contact_id BIGINT,
				company_id BIGINT,
				task_id BIGINT,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_activities_contact_id ON activities(contact_id);
		`,
	}
}
