package profile

var ClassifyStatus = classifyStatus
