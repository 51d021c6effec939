// Package redisstore stores session records in Redis.
//
// Records are plain string keys written with SET EX; reads refresh the TTL with EXPIRE.
// Connection handling lives in integration/database/redis.
package redisstore
