package validators

import "go.mongodb.org/mongo-driver/bson"

var UploadValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"gst_file_name",
			"tally_file_name",
			"gst_headers",
			"tally_headers",
			"gst_data",
			"tally_data",
			"checksum",
			"created_at",
		},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":             bson.M{"bsonType": "objectId"},
			"gst_file_name":   bson.M{"bsonType": "string", "minLength": 1},
			"tally_file_name": bson.M{"bsonType": "string", "minLength": 1},
			"gst_headers": bson.M{
				"bsonType": "array",
				"items":    bson.M{"bsonType": "string"},
			},
			"tally_headers": bson.M{
				"bsonType": "array",
				"items":    bson.M{"bsonType": "string"},
			},
			"gst_data": bson.M{
				"bsonType": "array",
				"items":    bson.M{"bsonType": "object"},
			},
			"tally_data": bson.M{
				"bsonType": "array",
				"items":    bson.M{"bsonType": "object"},
			},
			// xxhash64 in hex
			"checksum": bson.M{
				"bsonType": "string",
				"pattern":  "^[0-9a-f]{16}$",
			},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
