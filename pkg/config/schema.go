// The config schema is declared here rather than generated by protoc: it is a plain proto2 file
// descriptor whose leaf field names are the names of the command line flags they set.
// Nested messages only group flags by the package that owns them.

package config

import (
	"fmt"
	"sync"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/durationpb"
)

const (
	configFileName    = "ringlist/config.proto"
	configMessageName = "ringlist.Config"
	durationTypeName  = ".google.protobuf.Duration"
)

func optionalField(name string, number int32, kind descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:   kind.Enum(),
	}
}

func messageField(name string, number int32, typeName string) *descriptorpb.FieldDescriptorProto {
	field := optionalField(name, number, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE)
	field.TypeName = proto.String(typeName)
	return field
}

// configFileProto describes:
//
//	message Config {
//	  message Logging  { string log_handler_type = 1; string log_level = 2; }
//	  message Server   { string address = 1; google.protobuf.Duration idle_close = 2; string metrics_address = 3; }
//	  message Registry { int64 shard_count = 1; int64 max_list_size = 2;
//	                     uint64 bloom_expected_names = 3; double bloom_false_positive_rate = 4; }
//	  Logging logging = 1; Server server = 2; Registry registry = 3;
//	}
func configFileProto() *descriptorpb.FileDescriptorProto {
	const (
		typeString = descriptorpb.FieldDescriptorProto_TYPE_STRING
		typeInt64  = descriptorpb.FieldDescriptorProto_TYPE_INT64
		typeUint64 = descriptorpb.FieldDescriptorProto_TYPE_UINT64
		typeDouble = descriptorpb.FieldDescriptorProto_TYPE_DOUBLE
	)
	return &descriptorpb.FileDescriptorProto{
		Name:       proto.String(configFileName),
		Package:    proto.String("ringlist"),
		Syntax:     proto.String("proto2"),
		Dependency: []string{durationpb.File_google_protobuf_duration_proto.Path()},
		MessageType: []*descriptorpb.DescriptorProto{{
			Name: proto.String("Config"),
			NestedType: []*descriptorpb.DescriptorProto{
				{
					Name: proto.String("Logging"),
					Field: []*descriptorpb.FieldDescriptorProto{
						optionalField("log_handler_type", 1, typeString),
						optionalField("log_level", 2, typeString),
					},
				},
				{
					Name: proto.String("Server"),
					Field: []*descriptorpb.FieldDescriptorProto{
						optionalField("address", 1, typeString),
						messageField("idle_close", 2, durationTypeName),
						optionalField("metrics_address", 3, typeString),
					},
				},
				{
					Name: proto.String("Registry"),
					Field: []*descriptorpb.FieldDescriptorProto{
						optionalField("shard_count", 1, typeInt64),
						optionalField("max_list_size", 2, typeInt64),
						optionalField("bloom_expected_names", 3, typeUint64),
						optionalField("bloom_false_positive_rate", 4, typeDouble),
					},
				},
			},
			Field: []*descriptorpb.FieldDescriptorProto{
				messageField("logging", 1, ".ringlist.Config.Logging"),
				messageField("server", 2, ".ringlist.Config.Server"),
				messageField("registry", 3, ".ringlist.Config.Registry"),
			},
		}},
	}
}

// ConfigDescriptor returns the descriptor of the ringlist.Config message.
var ConfigDescriptor = sync.OnceValues(func() (protoreflect.MessageDescriptor, error) {
	file, err := protodesc.NewFile(configFileProto(), protoregistry.GlobalFiles)
	if err != nil {
		return nil, fmt.Errorf("failed to build config schema: %w", err)
	}
	md := file.Messages().ByName("Config")
	if md == nil || md.FullName() != configMessageName {
		return nil, fmt.Errorf("config schema has no %s message", configMessageName)
	}
	return md, nil
})

// isLeaf reports whether `fd` maps to a single flag. Durations are leaves even though they are messages.
func isLeaf(fd protoreflect.FieldDescriptor) bool {
	if fd.Kind() != protoreflect.MessageKind && fd.Kind() != protoreflect.GroupKind {
		return true
	}
	return fd.Message().FullName() == durationpb.File_google_protobuf_duration_proto.Messages().ByName("Duration").FullName()
}
