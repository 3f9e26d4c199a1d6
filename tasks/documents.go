package tasks

import (
	"hanlex.com/lac/redis"
)

const DocumentsDB redis.DB = 0

type DocumentTask struct {
	FailedTasks  []string            `json:"failed_tasks"`
	FailedChunks map[string][]string `json:"failed_chunks"`
}

type DocumentTaskCached struct {
	DocInfo     map[string]interface{} `json:"document_info"`
	FailedTasks []string               `json:"failed_tasks"`
	JobID       string                 `json:"job_id"`
	WorkType    string                 `json:"work_type"`
}

// documentTaskFailedTasks is the slice of the cached document updated when
// a task fails; merging only this struct keeps the rest of the cached
// properties intact.
type documentTaskFailedTasks struct {
	FailedTasks []string `json:"failed_tasks"`
}

type DocumentTasks struct {
	client redis.Client
}

func (tasks DocumentTasks) Get(redisKey string) (*DocumentTask, error) {
	var task DocumentTask
	err := tasks.client.GetPartialDocument(redisKey, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (tasks DocumentTasks) GetCached(redisKey string) (*DocumentTaskCached, error) {
	var task DocumentTaskCached
	err := tasks.client.GetPartialDocument(cachedPropertiesKey(redisKey), &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Update changes the document task and mirrors the failed task list into
// the cached properties document other workers read.
func (tasks DocumentTasks) Update(redisKey string, updateFunc func(task *DocumentTask)) (err error) {
	releaseLock, err := tasks.client.Lock(redisKey)
	if err != nil {
		return err
	}
	defer func() {
		releaseErr := releaseLock()
		if err == nil {
			err = releaseErr
		}
	}()

	var task DocumentTask
	err = tasks.client.GetPartialDocument(redisKey, &task)
	if err != nil {
		return err
	}
	updateFunc(&task)
	err = tasks.client.SavePartialDocument(redisKey, &task)
	if err != nil {
		return err
	}
	cached := documentTaskFailedTasks{FailedTasks: task.FailedTasks}
	return tasks.client.SavePartialDocument(cachedPropertiesKey(redisKey), &cached)
}
